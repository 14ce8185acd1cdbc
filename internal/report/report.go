// Package report carries run progress out of the pipeline as events and
// renders them for the terminal.
package report

// Level indicates the severity of an event.
type Level int

const (
	LevelVerbose Level = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

// Event is one progress update from a pipeline pass.
type Event struct {
	Level   Level
	Dir     string // directory or link the event is about, may be empty
	Message string
}

// Func receives events as the pipeline emits them. Implementations must
// tolerate concurrent calls: the extraction pass runs on several
// goroutines.
type Func func(Event)

// Discard ignores every event.
func Discard(Event) {}
