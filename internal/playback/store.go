// internal/playback/store.go
package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesync/internal/cache"
	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/errmsg"
)

// Verify Store implements Player at compile time.
var _ Player = (*Store)(nil)

// Store mirrors one engine handle into a Snapshot.
//
// Load attaches a listener for every engine event; each one funnels into
// Reduce and then re-reads the engine-owned fields, so the snapshot cannot
// drift from the engine. Destroy removes exactly those listeners.
type Store struct {
	cache  *cache.Cache
	logger zerolog.Logger

	mu        sync.Mutex
	src       string
	handle    engine.Handle
	listeners []registration

	// generation changes on every Load/Destroy; listeners of an older
	// generation are ignored.
	generation atomic.Uint64

	machine *Machine
}

type registration struct {
	event engine.Event
	id    engine.ListenerID
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for engine errors.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store building handles through c.
func NewStore(c *cache.Cache, opts ...StoreOption) *Store {
	s := &Store{
		cache:   c,
		logger:  zerolog.Nop(),
		machine: NewMachine(DefaultSnapshot()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the last published snapshot.
func (s *Store) Snapshot() Snapshot { return s.machine.Snapshot() }

// Subscribe registers fn to run after every snapshot replacement.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) { return s.machine.Subscribe(fn) }

// Src returns the loaded source, or "" when empty.
func (s *Store) Src() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src
}

// Handle returns the current engine handle, or nil. Mutating it directly
// bypasses the store's bookkeeping for loop state.
func (s *Store) Handle() engine.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Load replaces the current source with opts.Src. Loading the source that is
// already live does nothing; a source that failed is built again.
func (s *Store) Load(opts engine.Options) error {
	s.mu.Lock()
	if s.handle != nil && s.src == opts.Src &&
		s.handle.State() != engine.Unloaded && s.Snapshot().Error == "" {
		s.mu.Unlock()
		return nil
	}
	s.destroyLocked()

	h, err := s.cache.Create(opts)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Err(err).Str("src", opts.Src).Msg("create audio handle failed")
		// No handle is left behind; nothing of the previous session survives.
		s.machine.Replace(Reduce(DefaultSnapshot(), Action{
			Type:    ActionLoadError,
			Message: errmsg.Format(errmsg.OpCreateAudio, err),
		}))
		return err
	}

	gen := s.generation.Add(1)
	s.src = opts.Src
	s.handle = h
	for _, ev := range engine.Events {
		id := h.On(ev, s.listener(gen, h, ev))
		s.listeners = append(s.listeners, registration{event: ev, id: id})
	}
	for ev, hook := range opts.Hooks() {
		id := h.On(ev, func(error) { hook() })
		s.listeners = append(s.listeners, registration{event: ev, id: id})
	}
	s.mu.Unlock()

	s.machine.apply(s.current(gen, func(Snapshot) Snapshot {
		return Reduce(Snapshot{}, Action{Type: ActionStartLoad, Handle: h})
	}))

	h.Load()

	// A handle shared through the cache may already be loaded, even playing,
	// and will not emit load again.
	if h.State() == engine.Loaded {
		s.machine.apply(s.current(gen, func(Snapshot) Snapshot {
			return FromHandle(h)
		}))
	}
	return nil
}

// listener builds the engine listener for ev.
func (s *Store) listener(gen uint64, h engine.Handle, ev engine.Event) engine.Listener {
	typ, _ := ActionFor(ev)
	return func(err error) {
		a := Action{Type: typ, Handle: h}
		switch typ {
		case ActionLoadError:
			s.logger.Warn().Err(err).Str("src", s.Src()).Msg("audio load error")
			a.Message = errmsg.Format(errmsg.OpLoadAudio, err)
		case ActionPlayError:
			s.logger.Warn().Err(err).Str("src", s.Src()).Msg("audio playback error")
			a.Message = errmsg.Format(errmsg.OpPlayAudio, err)
		}
		s.machine.Observe(a, func() bool { return s.generation.Load() == gen })
	}
}

// current wraps fn so it only applies while gen is the live generation.
func (s *Store) current(gen uint64, fn func(Snapshot) Snapshot) update {
	return func(snap Snapshot) (Snapshot, bool) {
		if s.generation.Load() != gen {
			return snap, false
		}
		return fn(snap), true
	}
}

// Destroy detaches every listener added by Load, unloads the handle and
// resets the snapshot. Safe to call any number of times.
func (s *Store) Destroy() {
	s.mu.Lock()
	had := s.handle != nil
	s.destroyLocked()
	s.mu.Unlock()

	if had {
		s.machine.Replace(DefaultSnapshot())
	}
}

func (s *Store) destroyLocked() {
	if s.handle == nil {
		return
	}
	s.generation.Add(1)
	for _, r := range s.listeners {
		s.handle.Off(r.event, r.id)
	}
	s.listeners = nil
	s.cache.Destroy(s.src)
	s.src = ""
	s.handle = nil
}

// Play starts playback unless the handle is already playing; engines start a
// second voice otherwise.
func (s *Store) Play() {
	if h := s.Handle(); h != nil && !h.Playing() {
		h.Play()
	}
}

// Pause pauses the handle.
func (s *Store) Pause() {
	if h := s.Handle(); h != nil {
		h.Pause()
	}
}

// TogglePlayPause pauses when the snapshot says playing, plays otherwise.
func (s *Store) TogglePlayPause() {
	if s.Snapshot().IsPlaying {
		s.Pause()
	} else {
		s.Play()
	}
}

// Stop stops playback and rewinds.
func (s *Store) Stop() {
	if h := s.Handle(); h != nil {
		h.Stop()
	}
}

// SetVolume sets the output volume.
func (s *Store) SetVolume(level float64) {
	if h := s.Handle(); h != nil {
		h.SetVolume(level)
	}
}

// SetRate sets the playback rate.
func (s *Store) SetRate(rate float64) {
	if h := s.Handle(); h != nil {
		h.SetRate(rate)
	}
}

// Mute silences the output.
func (s *Store) Mute() {
	if h := s.Handle(); h != nil {
		h.SetMuted(true)
	}
}

// Unmute restores the output.
func (s *Store) Unmute() {
	if h := s.Handle(); h != nil {
		h.SetMuted(false)
	}
}

// ToggleMute flips the muted flag of the snapshot.
func (s *Store) ToggleMute() {
	if s.Snapshot().IsMuted {
		s.Unmute()
	} else {
		s.Mute()
	}
}

// LoopOn makes the source repeat.
func (s *Store) LoopOn() { s.setLoop(true) }

// LoopOff stops repeating.
func (s *Store) LoopOff() { s.setLoop(false) }

// ToggleLoop flips the looping flag of the snapshot.
func (s *Store) ToggleLoop() { s.setLoop(!s.Snapshot().IsLooping) }

// setLoop goes through the reducer; engines emit nothing we could observe.
func (s *Store) setLoop(loop bool) {
	s.mu.Lock()
	h := s.handle
	gen := s.generation.Load()
	s.mu.Unlock()
	if h == nil {
		return
	}
	s.machine.apply(s.current(gen, func(snap Snapshot) Snapshot {
		return Reduce(snap, Action{Type: ActionLoop, Handle: h, Loop: loop})
	}))
}

// Fade ramps the volume from one level to another over d.
func (s *Store) Fade(from, to float64, d time.Duration) {
	if h := s.Handle(); h != nil {
		h.Fade(from, to, d)
	}
}

// Seek moves the playhead; the engine clamps pos.
func (s *Store) Seek(pos time.Duration) {
	if h := s.Handle(); h != nil {
		h.Seek(pos)
	}
}

// Position returns the playhead, or 0 without a handle.
func (s *Store) Position() time.Duration {
	if h := s.Handle(); h != nil {
		return h.Position()
	}
	return 0
}
