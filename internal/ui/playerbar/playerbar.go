// Package playerbar renders a playback snapshot as a one-panel status bar.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/icons"
	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/ui/render"
	"github.com/llehouerou/wavesync/internal/ui/styles"
)

const (
	minBarWidth = 5
	filledCell  = "━"
	emptyCell   = "─"
)

// State holds everything needed to render the player bar.
type State struct {
	Title    string
	Snapshot playback.Snapshot
	Position time.Duration
	Shared   bool
}

// Height is the rendered height: two content rows plus borders.
const Height = 4

// Render returns the player bar for the given width.
func Render(s State, width int) string {
	st := styles.T().S()
	inner := max(width-4, 0) // border and padding

	panel := st.Panel
	if s.Snapshot.IsPlaying {
		panel = st.Active
	}
	lines := []string{
		headerLine(s, inner),
		progressLine(s, inner),
	}
	return panel.Width(max(width-2, 0)).Render(strings.Join(lines, "\n"))
}

// headerLine is "status  title ... flags".
func headerLine(s State, width int) string {
	st := styles.T().S()

	status := statusText(s.Snapshot)
	flags := flagsText(s)
	titleWidth := width - lipgloss.Width(status) - lipgloss.Width(flags) - 3

	title := s.Title
	if title == "" {
		title = "No source"
	}
	left := status + "  " + st.Title.Render(render.Truncate(title, titleWidth))
	return render.Row(left, st.Muted.Render(flags), width)
}

func progressLine(s State, width int) string {
	st := styles.T().S()
	snap := s.Snapshot

	if snap.Error != "" {
		return st.Error.Render(render.Truncate(snap.Error, width))
	}
	if !snap.IsReady {
		return st.Subtle.Render(strings.Repeat(emptyCell, width))
	}

	if snap.IsUnbounded() {
		pos := render.Duration(s.Position)
		live := "live"
		bar := strings.Repeat(emptyCell, max(width-lipgloss.Width(pos)-lipgloss.Width(live)-2, 0))
		return pos + " " + st.Subtle.Render(bar) + " " + st.Warning.Render(live)
	}

	timeStr := fmt.Sprintf("%s / %s", render.Duration(s.Position), render.Duration(snap.Duration))
	barWidth := width - lipgloss.Width(timeStr) - 2
	if barWidth < minBarWidth {
		return timeStr
	}
	filled := int(float64(barWidth) * Progress(s.Position, snap.Duration))
	bar := styles.GradientBar(filled, barWidth, filledCell, emptyCell, styles.T().Primary, styles.T().Secondary)
	return bar + "  " + timeStr
}

// Progress is position over duration, clamped to [0, 1]. Unknown and
// unbounded durations give 0.
func Progress(position, duration time.Duration) float64 {
	if duration <= 0 || duration == engine.Unbounded {
		return 0
	}
	return min(max(float64(position)/float64(duration), 0), 1)
}

func statusText(s playback.Snapshot) string {
	st := styles.T().S()
	switch s.State() {
	case playback.StateLoading:
		return st.Warning.Render(icons.Loading())
	case playback.StatePlaying:
		return st.Success.Render(icons.Play())
	case playback.StatePaused:
		return st.Base.Render(icons.Pause())
	case playback.StateStopped:
		return st.Muted.Render(icons.Stop())
	case playback.StateErrored:
		return st.Error.Render(icons.Error())
	default:
		return st.Subtle.Render(icons.Stop())
	}
}

// flagsText lists rate, loop, shared and volume, e.g. "1.5x [L] vol 80%".
func flagsText(s State) string {
	snap := s.Snapshot
	var parts []string
	if snap.Rate != 1 {
		parts = append(parts, fmt.Sprintf("%.2gx", snap.Rate))
	}
	if snap.IsLooping {
		parts = append(parts, icons.Loop())
	}
	if s.Shared {
		parts = append(parts, icons.Shared())
	}
	if snap.IsMuted {
		parts = append(parts, icons.Muted())
	} else {
		parts = append(parts, fmt.Sprintf("%s %d%%", icons.Volume(), int(snap.Volume*100+0.5)))
	}
	return strings.Join(parts, " ")
}
