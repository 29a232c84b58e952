// internal/playback/state.go
package playback

// State is a coarse projection of a Snapshot, convenient for rendering and
// for adapters that expose a single status.
//
//	┌──────────┐ load  ┌─────────┐ loaded ┌─────────┐ play ┌─────────┐
//	│ Unloaded │──────▶│ Loading │───────▶│ Stopped │─────▶│ Playing │
//	└──────────┘       └─────────┘        └─────────┘◀─────└─────────┘
//	                        │                  ▲  stop/end   │    ▲
//	                  error │                  │       pause │    │ play
//	                        ▼                  │ stop        ▼    │
//	                   ┌─────────┐             └─────────┌─────────┐
//	                   │ Errored │                       │ Paused  │
//	                   └─────────┘                       └─────────┘
//
// Errored is left by loading again.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateStopped
	StatePlaying
	StatePaused
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "Unloaded"
	case StateLoading:
		return "Loading"
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}
