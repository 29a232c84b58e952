// internal/app/commands.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/player"
	"github.com/llehouerou/wavesync/internal/position"
)

// WatchSnapshots waits for the next snapshot change.
func WatchSnapshots(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case c := <-sub.Changed:
			return SnapshotMsg(c)
		case <-sub.Done:
			return SnapshotsClosedMsg{}
		}
	}
}

// WatchPositions waits for the next published position.
func WatchPositions(ch <-chan time.Duration) tea.Cmd {
	return waitForChannel(ch, func(pos time.Duration, ok bool) tea.Msg {
		if !ok {
			return nil
		}
		return PositionMsg(pos)
	})
}

// ReadTrackInfoCmd reads the tags of src off the update loop.
func ReadTrackInfoCmd(src string) tea.Cmd {
	return func() tea.Msg {
		info, _ := player.ReadTrackInfo(src)
		return TrackInfoMsg{Src: src, Info: info}
	}
}

// watchPositions bridges tracker callbacks to a channel holding only the
// latest position.
func watchPositions(t *position.Tracker) (<-chan time.Duration, func()) {
	ch := make(chan time.Duration, 1)
	stop := t.Subscribe(func(pos time.Duration) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- pos:
		default:
		}
	})
	return ch, stop
}

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// onResult receives the value and a boolean indicating if the channel is still open (false means channel closed).
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}
