// Package overlay draws a box on top of an already rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Compose overlays top on base, line by line. The visible span of each top
// line, from its first to its last non-space column, replaces the base at the
// same columns. Blank top lines leave the base untouched. Styled text is
// handled.
func Compose(base, top string, width int) string {
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")

	for i, topLine := range topLines {
		if i >= len(baseLines) {
			break
		}

		plain := ansi.Strip(topLine)
		if strings.TrimSpace(plain) == "" {
			continue
		}

		startCol := len(plain) - len(strings.TrimLeft(plain, " "))
		trimmed := strings.TrimRight(plain, " ")
		endCol := startCol + ansi.StringWidth(trimmed[startCol:])

		content := ansi.Cut(topLine, startCol, endCol)

		baseLine := baseLines[i]
		if w := ansi.StringWidth(baseLine); w < width {
			baseLine += strings.Repeat(" ", width-w)
		}

		line := ansi.Cut(baseLine, 0, startCol) + content
		if endCol < width {
			line += ansi.Cut(baseLine, endCol, width)
		}
		baseLines[i] = line
	}

	return strings.Join(baseLines, "\n")
}

// Center composes box in the middle of a width x height area over base. The
// area grows to fit the box, and base is padded with blank lines to fill it.
func Center(base, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	boxWidth := 0
	for _, l := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}
	height = max(height, len(boxLines))

	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}

	left := max((width-boxWidth)/2, 0)
	top := (height - len(boxLines)) / 2

	var b strings.Builder
	for range top {
		b.WriteString("\n")
	}
	pad := strings.Repeat(" ", left)
	for i, l := range boxLines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pad)
		b.WriteString(l)
	}

	return Compose(strings.Join(lines, "\n"), b.String(), width)
}
