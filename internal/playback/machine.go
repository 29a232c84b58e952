// internal/playback/machine.go
package playback

import (
	"sync"
	"sync/atomic"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/observer"
)

// update computes the next snapshot. ok=false discards the update without
// notifying.
type update func(s Snapshot) (next Snapshot, ok bool)

// Machine owns a snapshot and serializes every change to it.
//
// Updates are queued and applied one at a time by whichever goroutine finds
// the machine idle. Observers run synchronously after each replacement, so
// they see every transition exactly once and in order. An update submitted
// from inside an observer is applied after the current round completes.
type Machine struct {
	mu          sync.Mutex
	queue       []update
	dispatching bool

	snapshot  atomic.Pointer[Snapshot]
	observers observer.Registry[func()]
}

// NewMachine creates a machine holding initial.
func NewMachine(initial Snapshot) *Machine {
	m := &Machine{}
	m.snapshot.Store(&initial)
	return m
}

// Snapshot returns the last published snapshot.
func (m *Machine) Snapshot() Snapshot {
	return *m.snapshot.Load()
}

// Subscribe registers fn to run after every transition. The returned func
// unregisters it and is safe to call more than once.
func (m *Machine) Subscribe(fn func()) (unsubscribe func()) {
	id := m.observers.Add(fn)
	return func() { m.observers.Remove(id) }
}

// Dispatch applies a through Reduce.
func (m *Machine) Dispatch(a Action) {
	m.apply(func(s Snapshot) (Snapshot, bool) {
		return Reduce(s, a), true
	})
}

// Observe applies an action raised by an engine event. After reducing, the
// fields the engine owns are re-read from a.Handle so they never drift.
// The action is dropped if live reports false when its turn comes.
func (m *Machine) Observe(a Action, live func() bool) {
	m.apply(func(s Snapshot) (Snapshot, bool) {
		if live != nil && !live() {
			return s, false
		}
		next := Reduce(s, a)
		if a.Handle != nil && a.Handle.State() != engine.Unloaded {
			next = next.withEngineFields(a.Handle)
		}
		return next, true
	})
}

// Replace publishes s as is.
func (m *Machine) Replace(s Snapshot) {
	m.apply(func(Snapshot) (Snapshot, bool) { return s, true })
}

func (m *Machine) apply(u update) {
	m.mu.Lock()
	m.queue = append(m.queue, u)
	if m.dispatching {
		m.mu.Unlock()
		return
	}
	m.dispatching = true

	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.mu.Unlock()

		m.run(next)

		m.mu.Lock()
	}
	m.queue = nil
	m.dispatching = false
	m.mu.Unlock()
}

func (m *Machine) run(u update) {
	next, ok := u(m.Snapshot())
	if !ok {
		return
	}
	m.snapshot.Store(&next)
	for _, fn := range m.observers.List() {
		fn()
	}
}
