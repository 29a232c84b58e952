// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Audio operations
	OpLoadAudio   Op = "load audio source"
	OpPlayAudio   Op = "play audio source"
	OpCreateAudio Op = "create audio handle"

	// Configuration
	OpConfigLoad Op = "load configuration"

	// Saved preferences
	OpPrefsLoad Op = "load preferences"
	OpPrefsSave Op = "save preferences"

	// Desktop integration
	OpMPRISStart Op = "start media controls"

	// Initialization
	OpInitialize Op = "initialize application"
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
