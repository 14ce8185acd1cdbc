// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan Op = "scan library"

	// Cover art operations
	OpArtExtract Op = "extract cover art"

	// Icon operations
	OpIconApply       Op = "apply folder icon"
	OpDesktopClassify Op = "classify desktop session"

	// Symlink operations
	OpAlbumLink Op = "link album"
	OpTrackLink Op = "link track"

	// Configuration
	OpConfigLoad Op = "load configuration"

	// Notifications
	OpNotify Op = "send notification"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
