package app

import (
	"fmt"
	"strings"

	"github.com/llehouerou/wavesync/internal/ui/overlay"
	"github.com/llehouerou/wavesync/internal/ui/playerbar"
	"github.com/llehouerou/wavesync/internal/ui/render"
	"github.com/llehouerou/wavesync/internal/ui/styles"
)

const defaultWidth = 80

// View implements tea.Model.
func (m Model) View() string {
	width := m.Width
	if width <= 0 {
		width = defaultWidth
	}
	st := styles.T().S()

	var b strings.Builder
	b.WriteString(playerbar.Render(playerbar.State{
		Title:    m.Title,
		Snapshot: m.Snapshot,
		Position: m.Position,
		Shared:   m.Shared,
	}, width))
	b.WriteString("\n")

	source := ""
	if len(m.Sources) > 0 {
		source = fmt.Sprintf("%d/%d", m.Current+1, len(m.Sources))
	}
	b.WriteString(st.Subtle.Render(render.Row(" "+source, "? help  q quit ", width)))

	if !m.ShowHelp {
		return b.String()
	}
	help := st.Panel.Render(st.Muted.Render(strings.Join(m.Keys.Help(), "\n")))
	return overlay.Center(b.String(), help, width, m.Height)
}
