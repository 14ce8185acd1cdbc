// Package icons applies extracted cover art as directory icons through one
// of two desktop conventions: a metadata attribute set with the desktop
// metadata tool, or a .directory descriptor file.
package icons

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llehouerou/folderart/internal/library"
)

// DescriptorName is the descriptor file written next to the marker,
// fixed by the freedesktop convention.
const DescriptorName = ".directory"

// Applier sets the folder icon for a single directory. Both
// implementations are idempotent; the pipeline selects exactly one per run
// and never mixes mechanisms across directories.
type Applier interface {
	// Name identifies the mechanism in events and summaries.
	Name() string
	// Apply sets the icon when the directory qualifies and reports
	// whether it did.
	Apply(dir library.Dir) (bool, error)
}

// DescriptorApplier writes the descriptor file into every directory, art
// or not. Descriptors are relative pointers that become effective as soon
// as the marker arrives, so writing them eagerly is harmless.
type DescriptorApplier struct {
	DescriptorName string
	MarkerName     string
}

func (a *DescriptorApplier) Name() string { return "descriptor" }

func (a *DescriptorApplier) Apply(dir library.Dir) (bool, error) {
	content := fmt.Sprintf("[Desktop Entry]\nIcon=./%s\n", a.MarkerName)
	path := filepath.Join(dir.Path, a.DescriptorName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write descriptor: %w", err)
	}
	return true, nil
}

// MetadataApplier tags directories with a custom-icon attribute through
// the desktop metadata tool. Directories without art are skipped, the
// attribute has to point at an existing file.
type MetadataApplier struct {
	ToolPath   string
	MarkerName string
	// Run executes the tool; overridable for tests.
	Run func(name string, args ...string) ([]byte, error)
}

func (a *MetadataApplier) Name() string { return "metadata" }

func (a *MetadataApplier) Apply(dir library.Dir) (bool, error) {
	if !dir.HasMarker {
		return false, nil
	}

	marker, err := filepath.Abs(filepath.Join(dir.Path, a.MarkerName))
	if err != nil {
		return false, fmt.Errorf("resolve marker path: %w", err)
	}

	output, err := a.run(a.ToolPath, "set", dir.Path, "metadata::custom-icon", "file://"+marker)
	if err != nil {
		return false, fmt.Errorf("set custom icon: %w\n%s", err, string(output))
	}
	return true, nil
}

func (a *MetadataApplier) run(name string, args ...string) ([]byte, error) {
	if a.Run != nil {
		return a.Run(name, args...)
	}
	return exec.Command(name, args...).CombinedOutput()
}
