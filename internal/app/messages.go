package app

import (
	"time"

	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/player"
)

// SnapshotMsg carries a published snapshot change.
type SnapshotMsg playback.Change

// SnapshotsClosedMsg is sent once the snapshot subscription is closed.
type SnapshotsClosedMsg struct{}

// PositionMsg carries the latest playhead position.
type PositionMsg time.Duration

// TrackInfoMsg carries the tags of Src.
type TrackInfoMsg struct {
	Src  string
	Info player.TrackInfo
}
