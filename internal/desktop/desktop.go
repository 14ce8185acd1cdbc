// Package desktop classifies the running desktop session and picks the
// folder-icon strategy the host's file manager honors. Classification is a
// pure function over session hints and tool availability, so one run uses
// exactly one strategy and tests can feed synthetic sessions.
package desktop

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Strategy is the icon application mechanism selected for a whole run.
type Strategy int

const (
	// StrategyDescriptor writes a .directory file next to the art, the
	// fallback convention desktop file managers honor.
	StrategyDescriptor Strategy = iota
	// StrategyMetadata sets a per-directory metadata attribute through the
	// metadata tool. GTK file managers (Nautilus, Nemo, Caja) read it.
	StrategyMetadata
)

func (s Strategy) String() string {
	switch s {
	case StrategyDescriptor:
		return "descriptor"
	case StrategyMetadata:
		return "metadata"
	}
	return "unknown"
}

// MetadataTool is the external binary StrategyMetadata depends on.
const MetadataTool = "gio"

// ErrToolMissing is reported when the classified strategy needs a tool the
// host does not have. Fatal: the run cannot proceed with an unusable
// strategy.
var ErrToolMissing = errors.New("required tool not found")

// Session holds the desktop hints read from the environment, captured once
// at startup.
type Session struct {
	CurrentDesktop string // XDG_CURRENT_DESKTOP
	DesktopSession string // DESKTOP_SESSION
}

// CurrentSession captures the hints from the process environment.
func CurrentSession() Session {
	return Session{
		CurrentDesktop: os.Getenv("XDG_CURRENT_DESKTOP"),
		DesktopSession: os.Getenv("DESKTOP_SESSION"),
	}
}

// Name returns the primary session identifier for display.
func (s Session) Name() string {
	if s.CurrentDesktop != "" {
		return s.CurrentDesktop
	}
	if s.DesktopSession != "" {
		return s.DesktopSession
	}
	return "unknown"
}

// names returns every lowercased identifier the session advertises.
// XDG_CURRENT_DESKTOP can be a colon-separated list ("ubuntu:GNOME").
func (s Session) names() []string {
	var out []string
	for _, part := range strings.Split(s.CurrentDesktop, ":") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if v := strings.TrimSpace(s.DesktopSession); v != "" {
		out = append(out, strings.ToLower(v))
	}
	return out
}

func (s Session) matches(family map[string]struct{}) bool {
	for _, name := range s.names() {
		if _, ok := family[name]; ok {
			return true
		}
	}
	return false
}

// Desktop families by lowercased session name. Sessions not listed here
// fall through to the tool probe, so these only need to cover the names
// the major desktops actually export.
var (
	gtkDesktops = map[string]struct{}{
		"gnome":      {},
		"unity":      {},
		"cinnamon":   {},
		"x-cinnamon": {},
		"budgie":     {},
		"mate":       {},
		"xfce":       {},
		"pantheon":   {},
		"lxde":       {},
	}
	kdeDesktops = map[string]struct{}{
		"kde":    {},
		"plasma": {},
		"lxqt":   {},
	}
)

// Classifier picks the strategy for a session. The zero value probes tools
// with exec.LookPath.
type Classifier struct {
	// LookPath locates external tools; overridable for tests.
	LookPath func(name string) (string, error)
}

func (c *Classifier) lookPath(name string) (string, error) {
	if c.LookPath != nil {
		return c.LookPath(name)
	}
	return exec.LookPath(name)
}

// MetadataToolPath locates the metadata tool, "" when not installed.
func (c *Classifier) MetadataToolPath() string {
	path, err := c.lookPath(MetadataTool)
	if err != nil {
		return ""
	}
	return path
}

// Classify decides the icon strategy. First match wins: a GTK-family
// session requires the metadata tool and fails without it, a KDE-family
// session always uses descriptor files, and an unrecognized session probes
// for the metadata tool to choose.
func (c *Classifier) Classify(s Session) (Strategy, error) {
	switch {
	case s.matches(gtkDesktops):
		if _, err := c.lookPath(MetadataTool); err != nil {
			return 0, fmt.Errorf("%s session needs %s: %w", s.Name(), MetadataTool, ErrToolMissing)
		}
		return StrategyMetadata, nil
	case s.matches(kdeDesktops):
		return StrategyDescriptor, nil
	}

	if _, err := c.lookPath(MetadataTool); err == nil {
		return StrategyMetadata, nil
	}
	return StrategyDescriptor, nil
}
