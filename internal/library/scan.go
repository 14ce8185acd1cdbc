// Package library models the on-disk music tree: an artists root containing
// artist directories, each containing album directories of audio files.
// The tree is rescanned on every run; nothing is cached between invocations.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File extensions treated as audio when scanning directories.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtM4A  = ".m4a"
	ExtOGG  = ".ogg"
	ExtAAC  = ".aac"
	ExtWMA  = ".wma"
	ExtWAV  = ".wav"
	ExtAIFF = ".aiff"
)

var audioExtensions = map[string]struct{}{
	ExtMP3:  {},
	ExtFLAC: {},
	ExtM4A:  {},
	ExtOGG:  {},
	ExtAAC:  {},
	ExtWMA:  {},
	ExtWAV:  {},
	ExtAIFF: {},
}

// IsAudioFile returns true if the path has a supported audio file extension.
func IsAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Dir describes one directory of a scanned tree.
// Audio and Subdirs hold direct children only, as base names in name order.
type Dir struct {
	Path          string
	Audio         []string
	Subdirs       []string
	HasMarker     bool
	HasDescriptor bool
}

// FirstAudio returns the full path of the first audio file in name order,
// or "" if the directory contains none. Name order is stable for a given
// directory snapshot, which keeps extraction deterministic.
func (d *Dir) FirstAudio() string {
	if len(d.Audio) == 0 {
		return ""
	}
	return filepath.Join(d.Path, d.Audio[0])
}

// ErrNotDirectory is reported when a scan root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Scanner walks a library tree and reports what each directory contains.
// MarkerName and DescriptorName are matched case-sensitively against direct
// children to fill the Dir booleans.
type Scanner struct {
	MarkerName     string
	DescriptorName string
}

// Walk visits root and every directory below it, parent before children,
// siblings in name order, calling fn for each. An explicit stack is used
// instead of recursion so traversal order stays auditable on deep trees.
// A missing or unreadable root is an error; unreadable directories further
// down are skipped and the walk continues.
func (s *Scanner) Walk(root string, fn func(Dir) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan %s: %w", root, ErrNotDirectory)
	}

	stack := []string{root}
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d, err := s.readDir(path)
		if err != nil {
			if path == root {
				return fmt.Errorf("scan %s: %w", root, err)
			}
			continue
		}

		if err := fn(d); err != nil {
			return err
		}

		// Push in reverse so children pop in name order.
		for i := len(d.Subdirs) - 1; i >= 0; i-- {
			stack = append(stack, filepath.Join(path, d.Subdirs[i]))
		}
	}

	return nil
}

func (s *Scanner) readDir(path string) (Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Dir{}, err
	}

	d := Dir{Path: path}
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			d.Subdirs = append(d.Subdirs, name)
		case name == s.MarkerName:
			d.HasMarker = true
		case name == s.DescriptorName:
			d.HasDescriptor = true
		case IsAudioFile(name):
			d.Audio = append(d.Audio, name)
		}
	}

	return d, nil
}
