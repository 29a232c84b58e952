package engine

import (
	"slices"
	"sync"
)

// Event identifies a handle lifecycle event.
type Event int

const (
	EventLoad Event = iota
	EventPlay
	EventPause
	EventStop
	EventEnd
	EventMute
	EventVolume
	EventRate
	EventSeek
	EventFade
	EventLoadError
	EventPlayError
)

// Events lists every event a handle can emit.
var Events = []Event{
	EventLoad, EventPlay, EventPause, EventStop, EventEnd, EventMute,
	EventVolume, EventRate, EventSeek, EventFade, EventLoadError, EventPlayError,
}

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventLoad:
		return "load"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventStop:
		return "stop"
	case EventEnd:
		return "end"
	case EventMute:
		return "mute"
	case EventVolume:
		return "volume"
	case EventRate:
		return "rate"
	case EventSeek:
		return "seek"
	case EventFade:
		return "fade"
	case EventLoadError:
		return "loaderror"
	case EventPlayError:
		return "playerror"
	default:
		return "unknown"
	}
}

// Listener receives an event. err is non-nil only for EventLoadError and
// EventPlayError.
type Listener func(err error)

// ListenerID identifies one registration made with On.
type ListenerID uint64

type registration struct {
	id ListenerID
	fn Listener
}

// Listeners is a goroutine-safe listener registry for Handle implementations.
// The zero value is ready to use.
type Listeners struct {
	mu      sync.Mutex
	lastID  ListenerID
	byEvent map[Event][]registration
}

// On registers fn for ev.
func (l *Listeners) On(ev Event, fn Listener) ListenerID {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.byEvent == nil {
		l.byEvent = make(map[Event][]registration)
	}
	l.lastID++
	l.byEvent[ev] = append(l.byEvent[ev], registration{id: l.lastID, fn: fn})
	return l.lastID
}

// Off removes the registration with the given id, leaving every other
// listener of ev in place.
func (l *Listeners) Off(ev Event, id ListenerID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	regs := l.byEvent[ev]
	i := slices.IndexFunc(regs, func(r registration) bool { return r.id == id })
	if i < 0 {
		return
	}
	l.byEvent[ev] = slices.Delete(slices.Clone(regs), i, i+1)
}

// Emit calls every listener of ev in registration order. Listeners added or
// removed while emitting take effect on the next Emit.
func (l *Listeners) Emit(ev Event, err error) {
	l.mu.Lock()
	regs := l.byEvent[ev]
	l.mu.Unlock()

	for _, r := range regs {
		r.fn(err)
	}
}

// Count returns the number of listeners registered for ev.
func (l *Listeners) Count(ev Event) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byEvent[ev])
}
