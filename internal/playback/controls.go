// internal/playback/controls.go
package playback

import "time"

// Controls is the imperative surface a UI drives playback through.
//
// Every operation is a no-op while no source is loaded; Position then
// returns 0. Toggles decide their direction from the last published
// snapshot, not from the engine, so they agree with what the UI displays.
type Controls interface {
	// Play starts or resumes playback.
	Play()
	// Pause pauses at the current position.
	Pause()
	// TogglePlayPause pauses when the snapshot says playing, plays otherwise.
	TogglePlayPause()
	// Stop stops and rewinds to the start.
	Stop()

	// SetVolume sets the volume in [0, 1].
	SetVolume(level float64)
	// SetRate sets the playback rate, 1 being normal speed.
	SetRate(rate float64)
	Mute()
	Unmute()
	ToggleMute()
	LoopOn()
	LoopOff()
	ToggleLoop()

	// Fade ramps the volume from one level to another over d.
	Fade(from, to float64, d time.Duration)
	// Seek moves the playhead to pos.
	Seek(pos time.Duration)
	// Position returns the live playhead position.
	Position() time.Duration
}

// Observable is the read side of a playback session: the pair a UI binding
// needs to render and re-render.
type Observable interface {
	Snapshot() Snapshot
	Subscribe(fn func()) (unsubscribe func())
}

// Player is a full playback session: observable state plus controls.
type Player interface {
	Observable
	Controls
}
