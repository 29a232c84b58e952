//go:build windows

// Package stderr provides a no-op implementation for Windows.
// Windows audio output does not write to the console.
package stderr

import "os"

// Start returns a channel that never receives.
func Start() (<-chan string, error) {
	return make(chan string), nil
}

// WriteOriginal writes to stderr.
func WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op on Windows.
func Stop() {}
