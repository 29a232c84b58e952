package playback

import "sync"

const eventBufferSize = 16

// Change is one snapshot transition.
type Change struct {
	Previous Snapshot
	Current  Snapshot
}

// Subscription delivers snapshot transitions of an Observable on a channel,
// for consumers that select rather than register callbacks.
type Subscription struct {
	Changed <-chan Change
	Done    <-chan struct{}

	changeCh chan Change
	doneCh   chan struct{}

	mu          sync.Mutex
	last        Snapshot
	unsubscribe func()
	closed      bool
}

// Watch subscribes to o. Transitions are dropped while the buffer is full;
// Current always carries the latest snapshot so a reader never misses the
// final state for long.
func Watch(o Observable) *Subscription {
	s := &Subscription{
		changeCh: make(chan Change, eventBufferSize),
		doneCh:   make(chan struct{}),
		last:     o.Snapshot(),
	}
	s.Changed = s.changeCh
	s.Done = s.doneCh
	s.unsubscribe = o.Subscribe(func() {
		s.send(o.Snapshot())
	})
	return s
}

func (s *Subscription) send(current Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	e := Change{Previous: s.last, Current: current}
	s.last = current
	select {
	case s.changeCh <- e:
	default:
		// Drop if buffer full
	}
}

// Close unsubscribes and signals Done. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.doneCh)
	s.mu.Unlock()
	s.unsubscribe()
}
