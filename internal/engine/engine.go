// Package engine defines the audio engine capability the playback layer drives.
//
// A Handle represents one loaded (or loading) audio source. It exposes the
// playback primitives and emits lifecycle events; the playback layer never
// reaches past this interface.
package engine

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Unbounded is the duration reported by sources without a known end (streams).
const Unbounded = time.Duration(math.MaxInt64)

// ErrUnloaded is returned when an operation needs a loaded handle.
var ErrUnloaded = errors.New("engine: handle unloaded")

// LoadState is the load lifecycle of a handle.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Error codes carried by Error.
const (
	CodeAborted     = 1
	CodeIO          = 2
	CodeDecode      = 3
	CodeUnsupported = 4
)

// Error carries the implementation-defined error code of a failed load or play.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine error %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("engine error %d", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Handle is an engine instance bound to a single source.
//
// A new handle is idle in the Loading state until Load is called, so owners
// can attach listeners without missing the outcome. Mutators emit the
// matching event once the engine has applied the change, except SetLoop
// which has no event.
type Handle interface {
	// Load starts loading the source. Later calls do nothing.
	Load()
	Play()
	Pause()
	Stop()
	Seek(pos time.Duration)
	Position() time.Duration
	SetMuted(muted bool)
	Muted() bool
	SetVolume(level float64)
	Volume() float64
	SetRate(rate float64)
	Rate() float64
	SetLoop(loop bool)
	Loop() bool
	Fade(from, to float64, d time.Duration)
	Duration() time.Duration
	Playing() bool
	State() LoadState

	// On registers fn for ev and returns the id needed to remove it.
	On(ev Event, fn Listener) ListenerID
	// Off removes the listener registered under id. Unknown ids are ignored.
	Off(ev Event, id ListenerID)

	// Unload releases the source. The handle emits nothing afterwards.
	Unload()
}

// Factory constructs a handle for opts.Src.
//
// Factories must not register the Options hooks themselves: owners register
// them so they can remove exactly what they added.
type Factory func(opts Options) (Handle, error)

// Options configures a handle at construction.
type Options struct {
	Src      string
	Format   string // overrides the extension of Src when set
	Loop     bool
	Volume   *float64
	Rate     *float64
	Mute     bool
	Autoplay bool
	Stream   bool // source has no known length

	OnLoad  func()
	OnPlay  func()
	OnPause func()
	OnStop  func()
	OnEnd   func()
}

// InitialVolume returns the requested starting volume, 1 when unset.
func (o Options) InitialVolume() float64 {
	if o.Volume == nil {
		return 1
	}
	return ClampVolume(*o.Volume)
}

// InitialRate returns the requested starting rate, 1 when unset.
func (o Options) InitialRate() float64 {
	if o.Rate == nil {
		return 1
	}
	return ClampRate(*o.Rate)
}

// Hooks returns the non-nil option callbacks keyed by the event they observe.
func (o Options) Hooks() map[Event]func() {
	hooks := make(map[Event]func())
	if o.OnLoad != nil {
		hooks[EventLoad] = o.OnLoad
	}
	if o.OnPlay != nil {
		hooks[EventPlay] = o.OnPlay
	}
	if o.OnPause != nil {
		hooks[EventPause] = o.OnPause
	}
	if o.OnStop != nil {
		hooks[EventStop] = o.OnStop
	}
	if o.OnEnd != nil {
		hooks[EventEnd] = o.OnEnd
	}
	return hooks
}

// Rate bounds accepted by engines.
const (
	MinRate = 0.5
	MaxRate = 4.0
)

// ClampVolume clamps level to [0, 1].
func ClampVolume(level float64) float64 {
	return min(max(level, 0), 1)
}

// ClampRate clamps rate to [MinRate, MaxRate].
func ClampRate(rate float64) float64 {
	return min(max(rate, MinRate), MaxRate)
}
