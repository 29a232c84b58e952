// Package testutil provides common testing utilities for UI components.
package testutil

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI color codes so rendered output can be compared
// as plain text.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// MeasureWidth returns the visual width of s without its color codes.
func MeasureWidth(s string) int {
	return lipgloss.Width(StripANSI(s))
}
