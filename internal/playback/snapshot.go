// internal/playback/snapshot.go

// Package playback turns the events of an audio engine handle into a stream
// of immutable snapshots and exposes the controls a UI needs.
package playback

import (
	"time"

	"github.com/llehouerou/wavesync/internal/engine"
)

// Snapshot is the immutable view of a playback session handed to observers.
// A new value replaces the old one on every transition.
type Snapshot struct {
	IsUnloaded bool
	IsLoading  bool
	IsReady    bool

	// Exactly one of these is set once IsReady is true.
	IsPlaying bool
	IsPaused  bool
	IsStopped bool

	Duration  time.Duration // 0 until ready, engine.Unbounded for streams
	Rate      float64
	Volume    float64
	IsLooping bool
	IsMuted   bool

	// Error is set only in the error sub-state.
	Error string
}

// DefaultSnapshot is the snapshot of a session with no source.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		IsUnloaded: true,
		Rate:       1,
		Volume:     1,
	}
}

// FromHandle derives a full snapshot from the live state of h.
func FromHandle(h engine.Handle) Snapshot {
	state := h.State()
	playing := h.Playing()
	s := Snapshot{
		IsUnloaded: state == engine.Unloaded,
		IsLoading:  state == engine.Loading,
		IsReady:    state == engine.Loaded,
		Rate:       h.Rate(),
		Volume:     h.Volume(),
		IsLooping:  h.Loop(),
		IsMuted:    h.Muted(),
	}
	if s.IsReady {
		s.Duration = h.Duration()
		s.IsPlaying = playing
		s.IsPaused = !playing && h.Position() > 0
		s.IsStopped = !playing && !s.IsPaused
	}
	return s
}

// withEngineFields re-reads the fields the engine owns from h.
func (s Snapshot) withEngineFields(h engine.Handle) Snapshot {
	s.Rate = h.Rate()
	s.Volume = h.Volume()
	s.IsMuted = h.Muted()
	s.IsLooping = h.Loop()
	if s.IsReady {
		s.Duration = h.Duration()
	}
	return s
}

// State projects the snapshot flags onto a single State.
func (s Snapshot) State() State {
	switch {
	case s.Error != "":
		return StateErrored
	case s.IsLoading:
		return StateLoading
	case s.IsUnloaded:
		return StateUnloaded
	case s.IsPlaying:
		return StatePlaying
	case s.IsPaused:
		return StatePaused
	default:
		return StateStopped
	}
}

// IsUnbounded reports whether the source has no known end.
func (s Snapshot) IsUnbounded() bool {
	return s.Duration == engine.Unbounded
}
