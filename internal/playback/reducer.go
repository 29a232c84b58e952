// internal/playback/reducer.go
package playback

import "github.com/llehouerou/wavesync/internal/engine"

// ActionType identifies a transition of the playback session.
type ActionType int

const (
	ActionStartLoad ActionType = iota
	ActionLoad
	ActionPlay
	ActionPause
	ActionStop
	ActionEnd
	ActionMute
	ActionVolume
	ActionRate
	ActionSeek
	ActionFade
	ActionLoop
	ActionLoadError
	ActionPlayError
	// ActionReset returns to the default snapshot once the handle is gone.
	ActionReset
)

// String returns the action name.
func (t ActionType) String() string {
	switch t {
	case ActionStartLoad:
		return "start-load"
	case ActionLoad:
		return "load"
	case ActionPlay:
		return "play"
	case ActionPause:
		return "pause"
	case ActionStop:
		return "stop"
	case ActionEnd:
		return "end"
	case ActionMute:
		return "mute"
	case ActionVolume:
		return "volume"
	case ActionRate:
		return "rate"
	case ActionSeek:
		return "seek"
	case ActionFade:
		return "fade"
	case ActionLoop:
		return "loop"
	case ActionLoadError:
		return "load-error"
	case ActionPlayError:
		return "play-error"
	case ActionReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Action is one input to Reduce.
type Action struct {
	Type ActionType
	// Handle is the engine handle the action concerns. Fields the engine owns
	// are read from it.
	Handle engine.Handle
	// Loop is the requested value for ActionLoop.
	Loop bool
	// Message is the error text for ActionLoadError and ActionPlayError.
	Message string
}

// ActionFor maps an engine event to the action it drives.
func ActionFor(ev engine.Event) (ActionType, bool) {
	switch ev {
	case engine.EventLoad:
		return ActionLoad, true
	case engine.EventPlay:
		return ActionPlay, true
	case engine.EventPause:
		return ActionPause, true
	case engine.EventStop:
		return ActionStop, true
	case engine.EventEnd:
		return ActionEnd, true
	case engine.EventMute:
		return ActionMute, true
	case engine.EventVolume:
		return ActionVolume, true
	case engine.EventRate:
		return ActionRate, true
	case engine.EventSeek:
		return ActionSeek, true
	case engine.EventFade:
		return ActionFade, true
	case engine.EventLoadError:
		return ActionLoadError, true
	case engine.EventPlayError:
		return ActionPlayError, true
	default:
		return 0, false
	}
}

// Reduce returns the snapshot that follows s after a.
//
// Reduce only reads from a.Handle, with one exception: ActionLoop also tells
// the handle to loop, because engines emit no event for it.
func Reduce(s Snapshot, a Action) Snapshot {
	switch a.Type {
	case ActionStartLoad:
		next := Snapshot{
			IsLoading: true,
			Rate:      1,
			Volume:    1,
		}
		if a.Handle != nil {
			next.Rate = a.Handle.Rate()
			next.Volume = a.Handle.Volume()
			next.IsMuted = a.Handle.Muted()
			next.IsLooping = a.Handle.Loop()
		}
		return next

	case ActionLoad:
		// A load event can outlive its handle when sources are swapped
		// quickly. The engine's own state tells us; drop it.
		if a.Handle == nil || a.Handle.State() == engine.Unloaded {
			return s
		}
		playing := a.Handle.Playing()
		s.IsUnloaded = false
		s.IsLoading = false
		s.IsReady = true
		s.IsPlaying = playing
		s.IsPaused = false
		s.IsStopped = !playing
		s.Error = ""
		return s.withEngineFields(a.Handle)

	case ActionPlay:
		s.IsPlaying = true
		s.IsPaused = false
		s.IsStopped = false
		return s

	case ActionPause:
		s.IsPlaying = false
		s.IsPaused = true
		s.IsStopped = false
		return s

	case ActionStop:
		s.IsPlaying = false
		s.IsPaused = false
		s.IsStopped = true
		return s

	case ActionEnd:
		s.IsPaused = false
		if s.IsLooping {
			s.IsPlaying = true
			s.IsStopped = false
		} else {
			s.IsPlaying = false
			s.IsStopped = true
		}
		return s

	case ActionMute:
		if a.Handle != nil {
			s.IsMuted = a.Handle.Muted()
		}
		return s

	case ActionVolume:
		if a.Handle != nil {
			s.Volume = a.Handle.Volume()
		}
		return s

	case ActionRate:
		if a.Handle != nil {
			s.Rate = a.Handle.Rate()
		}
		return s

	case ActionSeek, ActionFade:
		if a.Handle != nil {
			return s.withEngineFields(a.Handle)
		}
		return s

	case ActionLoop:
		s.IsLooping = a.Loop
		if a.Handle != nil {
			a.Handle.SetLoop(a.Loop)
		}
		return s

	case ActionLoadError:
		s.IsLoading = false
		fallthrough
	case ActionPlayError:
		s.IsReady = false
		s.IsPlaying = false
		s.IsPaused = false
		s.IsStopped = true
		s.Error = a.Message
		return s

	case ActionReset:
		return DefaultSnapshot()
	}
	return s
}
