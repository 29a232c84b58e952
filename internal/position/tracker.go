// Package position keeps the playhead position of a playback session up to
// date while it plays.
package position

import (
	"sync"
	"time"

	"github.com/llehouerou/wavesync/internal/observer"
	"github.com/llehouerou/wavesync/internal/playback"
)

// Source is the session a Tracker follows.
type Source interface {
	playback.Observable
	Position() time.Duration
	Seek(pos time.Duration)
}

// Tracker samples the position of a Source while it plays.
type Tracker struct {
	src     Source
	sampler Sampler

	mu       sync.Mutex
	position time.Duration
	duration time.Duration
	prev     playback.Snapshot
	closed   bool

	unsubscribe func()
	observers   observer.Registry[func(time.Duration)]
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithHighRefreshRate samples every display frame instead of every second.
func WithHighRefreshRate(enabled bool) Option {
	return func(t *Tracker) {
		if enabled {
			t.sampler = FrameSampler()
		} else {
			t.sampler = IntervalSampler(DefaultInterval)
		}
	}
}

// WithSampler sets the sampling strategy.
func WithSampler(s Sampler) Option {
	return func(t *Tracker) { t.sampler = s }
}

// New starts tracking src. Close must be called to release the sampler.
func New(src Source, opts ...Option) *Tracker {
	t := &Tracker{
		src:     src,
		sampler: IntervalSampler(DefaultInterval),
		prev:    playback.DefaultSnapshot(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.unsubscribe = src.Subscribe(t.onChange)
	t.onChange()
	return t
}

func (t *Tracker) onChange() {
	snap := t.src.Snapshot()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	prev := t.prev
	t.prev = snap
	t.duration = snap.Duration
	t.mu.Unlock()

	switch {
	case snap.IsUnloaded && !prev.IsUnloaded:
		t.publish(0)
	case snap.IsReady && !prev.IsReady, snap.IsStopped && !prev.IsStopped:
		t.resample()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if snap.IsPlaying {
		t.sampler.Start(t.tick)
	} else {
		t.sampler.Stop()
	}
}

func (t *Tracker) tick() {
	if !t.src.Snapshot().IsPlaying {
		return
	}
	t.resample()
}

func (t *Tracker) resample() {
	t.publish(t.src.Position())
}

func (t *Tracker) publish(pos time.Duration) {
	t.mu.Lock()
	if t.closed || t.position == pos {
		t.mu.Unlock()
		return
	}
	t.position = pos
	t.mu.Unlock()

	for _, fn := range t.observers.List() {
		fn(pos)
	}
}

// Position returns the last sampled position.
func (t *Tracker) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Duration returns the duration of the tracked source, 0 until it is ready.
func (t *Tracker) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Subscribe registers fn to receive every new position.
func (t *Tracker) Subscribe(fn func(pos time.Duration)) (unsubscribe func()) {
	id := t.observers.Add(fn)
	return func() { t.observers.Remove(id) }
}

// Seek moves the source to pos and returns where it actually landed, which
// engines may clamp.
func (t *Tracker) Seek(pos time.Duration) time.Duration {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return t.Position()
	}

	t.src.Seek(pos)
	actual := t.src.Position()
	t.publish(actual)
	return actual
}

// Close stops sampling and unsubscribes from the source. Safe to call more
// than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.sampler.Stop()
	t.mu.Unlock()

	t.unsubscribe()
	t.observers.Clear()
}
