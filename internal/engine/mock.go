// internal/engine/mock.go
package engine

import (
	"sync"
	"time"
)

// Mock is a synchronous test double for Handle. Mutators update state and
// emit their event before returning, the way a real engine eventually would.
type Mock struct {
	listeners Listeners

	mu        sync.Mutex
	opts      Options
	state     LoadState
	playing   bool
	position  time.Duration
	duration  time.Duration
	volume    float64
	rate      float64
	muted     bool
	loop      bool
	seekClamp bool
	playErr   *Error
	calls     []string
	fades     []Fade
	unloads   int
}

// Fade records one Fade call on a Mock.
type Fade struct {
	From, To float64
	Duration time.Duration
}

// NewMock creates a mock handle in the Loading state.
func NewMock(opts Options) *Mock {
	return &Mock{
		opts:     opts,
		state:    Loading,
		duration: 3 * time.Minute,
		volume:   opts.InitialVolume(),
		rate:     opts.InitialRate(),
		muted:    opts.Mute,
		loop:     opts.Loop,
	}
}

func (m *Mock) record(call string) {
	m.calls = append(m.calls, call)
}

// Load only records the call; tests finish loading with FinishLoad or
// FailLoad.
func (m *Mock) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("load")
}

func (m *Mock) Play() {
	m.mu.Lock()
	m.record("play")
	if m.state != Loaded {
		m.mu.Unlock()
		return
	}
	if m.playErr != nil {
		err := m.playErr
		m.playErr = nil
		m.mu.Unlock()
		m.listeners.Emit(EventPlayError, err)
		return
	}
	m.playing = true
	m.mu.Unlock()
	m.listeners.Emit(EventPlay, nil)
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.record("pause")
	m.playing = false
	m.mu.Unlock()
	m.listeners.Emit(EventPause, nil)
}

func (m *Mock) Stop() {
	m.mu.Lock()
	m.record("stop")
	m.playing = false
	m.position = 0
	m.mu.Unlock()
	m.listeners.Emit(EventStop, nil)
}

func (m *Mock) Seek(pos time.Duration) {
	m.mu.Lock()
	m.record("seek")
	pos = max(pos, 0)
	if m.seekClamp && pos > m.duration {
		pos = m.duration
	}
	m.position = pos
	m.mu.Unlock()
	m.listeners.Emit(EventSeek, nil)
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	m.record("mute")
	m.muted = muted
	m.mu.Unlock()
	m.listeners.Emit(EventMute, nil)
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	m.record("volume")
	m.volume = ClampVolume(level)
	m.mu.Unlock()
	m.listeners.Emit(EventVolume, nil)
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	m.record("rate")
	m.rate = ClampRate(rate)
	m.mu.Unlock()
	m.listeners.Emit(EventRate, nil)
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) SetLoop(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("loop")
	m.loop = loop
}

func (m *Mock) Loop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loop
}

func (m *Mock) Fade(from, to float64, d time.Duration) {
	m.mu.Lock()
	m.record("fade")
	m.fades = append(m.fades, Fade{From: from, To: to, Duration: d})
	m.volume = ClampVolume(to)
	m.mu.Unlock()
	m.listeners.Emit(EventFade, nil)
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Loaded {
		return 0
	}
	return m.duration
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) State() LoadState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) On(ev Event, fn Listener) ListenerID { return m.listeners.On(ev, fn) }

func (m *Mock) Off(ev Event, id ListenerID) { m.listeners.Off(ev, id) }

func (m *Mock) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("unload")
	m.unloads++
	m.state = Unloaded
	m.playing = false
	m.position = 0
}

// Test helpers

// FinishLoad moves the handle to Loaded and emits load, then starts playback
// when the handle was created with Autoplay.
func (m *Mock) FinishLoad() {
	m.mu.Lock()
	m.state = Loaded
	autoplay := m.opts.Autoplay
	m.mu.Unlock()
	m.listeners.Emit(EventLoad, nil)
	if autoplay {
		m.Play()
	}
}

// FailLoad emits loaderror with the given code.
func (m *Mock) FailLoad(code int) {
	m.mu.Lock()
	m.state = Unloaded
	m.mu.Unlock()
	m.listeners.Emit(EventLoadError, &Error{Code: code})
}

// FailNextPlay makes the next Play emit playerror with the given code.
func (m *Mock) FailNextPlay(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = &Error{Code: code}
}

// SimulateEnd plays the source to its end. A looping handle keeps playing
// from the start.
func (m *Mock) SimulateEnd() {
	m.mu.Lock()
	m.position = 0
	if !m.loop {
		m.playing = false
	}
	m.mu.Unlock()
	m.listeners.Emit(EventEnd, nil)
}

// EmitLoad emits load without touching the load state, to replay races where
// the event outlives the handle.
func (m *Mock) EmitLoad() { m.listeners.Emit(EventLoad, nil) }

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// SetSeekClamp makes Seek clamp to the duration like real engines do.
func (m *Mock) SetSeekClamp(clamp bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekClamp = clamp
}

func (m *Mock) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) Fades() []Fade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Fade(nil), m.fades...)
}

func (m *Mock) UnloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloads
}

func (m *Mock) ListenerCount(ev Event) int { return m.listeners.Count(ev) }

// MockFactory hands out Mock handles and remembers every one it built.
type MockFactory struct {
	mu      sync.Mutex
	created []*Mock
	err     error
}

// New is an engine.Factory.
func (f *MockFactory) New(opts Options) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m := NewMock(opts)
	f.created = append(f.created, m)
	return m, nil
}

// SetError makes subsequent constructions fail with err.
func (f *MockFactory) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Count returns how many handles were constructed.
func (f *MockFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// Last returns the most recently constructed handle, or nil.
func (f *MockFactory) Last() *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

// Verify Mock implements Handle at compile time.
var _ Handle = (*Mock)(nil)
