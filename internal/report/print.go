package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Symbols for event lines
const (
	successSymbol = "\u2713" // ✓
	failureSymbol = "\u2717" // ✗
	warningSymbol = "!"
	infoSymbol    = "\u2022" // •
	verboseSymbol = "\u00b7" // ·
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // orange

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	verboseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dim

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // cyan
)

// Printer renders events line by line. Safe for concurrent use.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	quiet   bool
}

// NewPrinter writes styled event lines to out. verbose admits
// LevelVerbose events, quiet drops everything below LevelWarning.
func NewPrinter(out io.Writer, verbose, quiet bool) *Printer {
	return &Printer{out: out, verbose: verbose, quiet: quiet}
}

// Print renders one event, honoring the verbosity gates.
func (p *Printer) Print(e Event) {
	if e.Level == LevelVerbose && !p.verbose {
		return
	}
	if p.quiet && e.Level < LevelWarning {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, render(e))
}

func render(e Event) string {
	msg := e.Message
	if e.Dir != "" {
		msg = dirStyle.Render(e.Dir+":") + " " + msg
	}

	switch e.Level {
	case LevelSuccess:
		return successStyle.Render(successSymbol) + " " + msg
	case LevelWarning:
		return warningStyle.Render(warningSymbol) + " " + msg
	case LevelError:
		return errorStyle.Render(failureSymbol) + " " + msg
	case LevelVerbose:
		return verboseStyle.Render(verboseSymbol) + " " + msg
	}
	return infoStyle.Render(infoSymbol) + " " + msg
}
