package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ApplyGradient colors each grapheme of text along a from-to gradient.
func ApplyGradient(text string, from, to lipgloss.Color) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	return paint(clusters, blendColors(len(clusters), from, to))
}

// GradientBar renders filled cells of a width-cell bar, colored by their
// place on the whole bar so the color under the playhead tracks progress.
// The rest is drawn with empty in the subtle color.
func GradientBar(filled, width int, cell, empty string, from, to lipgloss.Color) string {
	width = max(width, 0)
	filled = min(max(filled, 0), width)

	colors := blendColors(width, from, to)
	cells := make([]string, filled)
	for i := range cells {
		cells[i] = cell
	}

	rest := lipgloss.NewStyle().Foreground(T().FgSubtle).Render(strings.Repeat(empty, width-filled))
	return paint(cells, colors[:filled]) + rest
}

func paint(clusters []string, colors []color.Color) string {
	var b strings.Builder
	for i, cluster := range clusters {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i]))).Render(cluster))
	}
	return b.String()
}

// blendColors returns size colors from from to to, blended in HCL space.
func blendColors(size int, from, to lipgloss.Color) []color.Color {
	if size <= 0 {
		return nil
	}
	c1, _ := colorful.MakeColor(lipglossToColor(from))
	if size == 1 {
		return []color.Color{c1}
	}
	c2, _ := colorful.MakeColor(lipglossToColor(to))

	colors := make([]color.Color, size)
	for i := range size {
		colors[i] = c1.BlendHcl(c2, float64(i)/float64(size-1)).Clamped()
	}
	return colors
}

// lipglossToColor converts a "#rrggbb" color. ANSI color numbers fall back
// to gray.
func lipglossToColor(c lipgloss.Color) color.Color {
	hex := string(c)
	if len(hex) == 7 && hex[0] == '#' {
		if col, err := colorful.Hex(hex); err == nil {
			return col
		}
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

func colorToHex(c color.Color) string {
	if cf, ok := c.(colorful.Color); ok {
		return cf.Hex()
	}
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
