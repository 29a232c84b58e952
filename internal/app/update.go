package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/keymap"
	"github.com/llehouerou/wavesync/internal/state"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case SnapshotMsg:
		m.Snapshot = msg.Current
		m.savePreferences(msg)
		return m, WatchSnapshots(m.snapshots)

	case SnapshotsClosedMsg:
		return m, nil

	case PositionMsg:
		m.Position = time.Duration(msg)
		return m, WatchPositions(m.positions)

	case TrackInfoMsg:
		if msg.Src == m.CurrentSource() {
			m.Title = msg.Info.DisplayName()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	snap := m.Snapshot
	p := m.Player

	switch m.Keys.Resolve(key) {
	case keymap.ActionQuit:
		m.Close()
		return m, tea.Quit
	case keymap.ActionHelp:
		m.ShowHelp = !m.ShowHelp
	case keymap.ActionNext:
		if len(m.Sources) > 1 {
			m.Current = (m.Current + 1) % len(m.Sources)
			m.Position = 0
			return m, m.loadCurrent()
		}

	case keymap.ActionPlayPause:
		p.TogglePlayPause()
	case keymap.ActionStop:
		p.Stop()
	case keymap.ActionSeekForward:
		m.Position = m.Tracker.Seek(m.Tracker.Position() + seekStep)
	case keymap.ActionSeekBack:
		m.Position = m.Tracker.Seek(max(m.Tracker.Position()-seekStep, 0))

	case keymap.ActionVolumeUp:
		p.SetVolume(engine.ClampVolume(snap.Volume + volumeStep))
	case keymap.ActionVolumeDown:
		p.SetVolume(engine.ClampVolume(snap.Volume - volumeStep))
	case keymap.ActionToggleMute:
		p.ToggleMute()
	case keymap.ActionRateUp:
		p.SetRate(engine.ClampRate(snap.Rate + rateStep))
	case keymap.ActionRateDown:
		p.SetRate(engine.ClampRate(snap.Rate - rateStep))
	case keymap.ActionRateReset:
		p.SetRate(1)
	case keymap.ActionToggleLoop:
		p.ToggleLoop()
	case keymap.ActionFadeOut:
		p.Fade(snap.Volume, 0, fadeDuration)
	case keymap.ActionFadeIn:
		p.Fade(snap.Volume, 1, fadeDuration)
	}
	return m, nil
}

// savePreferences stores the output settings when one of them changed.
func (m Model) savePreferences(c SnapshotMsg) {
	if m.Prefs == nil || c.Current.IsUnloaded {
		return
	}
	prev, cur := state.PreferencesFrom(c.Previous), state.PreferencesFrom(c.Current)
	if prev != cur {
		m.Prefs.SavePreferences(cur)
	}
}
