// Package global is a consumer of the shared instance held by an
// instance.Manager. Several Players can observe the same handle; each keeps
// its own snapshot and subscribers, and all of them see the same broadcasts
// in the same order.
package global

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/errmsg"
	"github.com/llehouerou/wavesync/internal/instance"
	"github.com/llehouerou/wavesync/internal/playback"
)

// Verify Player implements playback.Player at compile time.
var _ playback.Player = (*Player)(nil)

// Player mirrors the manager's shared handle into its own snapshot.
type Player struct {
	manager *instance.Manager
	logger  zerolog.Logger
	machine *playback.Machine

	subID instance.SubscriptionID

	mu        sync.Mutex
	handle    engine.Handle
	listeners []registration
	closed    bool

	generation atomic.Uint64
}

type registration struct {
	event engine.Event
	id    engine.ListenerID
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger used for engine errors.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// New subscribes a Player to m. When m already holds a handle the player
// catches up with it immediately.
func New(m *instance.Manager, opts ...Option) *Player {
	p := &Player{
		manager: m,
		logger:  zerolog.Nop(),
		machine: playback.NewMachine(playback.DefaultSnapshot()),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.subID = m.Subscribe(p.onBroadcast)
	if h := m.Handle(); h != nil {
		p.onBroadcast(playback.Action{Type: playback.ActionStartLoad, Handle: h})
	}
	return p
}

func (p *Player) onBroadcast(a playback.Action) {
	switch {
	case a.Type == playback.ActionStartLoad:
		p.startLoad(a)
	case a.Type == playback.ActionReset,
		a.Type == playback.ActionLoadError && a.Handle == nil:
		p.release(a)
	default:
		p.machine.Dispatch(a)
	}
}

// startLoad moves the player's listeners to the handle carried by a.
func (p *Player) startLoad(a playback.Action) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.detachLocked()
	gen := p.generation.Add(1)
	p.handle = a.Handle
	if a.Handle != nil {
		for _, ev := range engine.Events {
			id := a.Handle.On(ev, p.listener(gen, a.Handle, ev))
			p.listeners = append(p.listeners, registration{event: ev, id: id})
		}
	}
	p.mu.Unlock()

	p.machine.Dispatch(a)
	// A handle reused from the cache, or joined late, may already be loaded
	// and will not emit load again.
	if a.Handle != nil && a.Handle.State() == engine.Loaded {
		p.machine.Replace(playback.FromHandle(a.Handle))
	}
}

// release handles the loss of the shared handle: nothing of the previous
// session survives in the snapshot.
func (p *Player) release(a playback.Action) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.detachLocked()
	p.mu.Unlock()
	p.machine.Replace(playback.Reduce(playback.DefaultSnapshot(), a))
}

func (p *Player) listener(gen uint64, h engine.Handle, ev engine.Event) engine.Listener {
	typ, _ := playback.ActionFor(ev)
	return func(err error) {
		a := playback.Action{Type: typ, Handle: h}
		switch typ {
		case playback.ActionLoadError:
			p.logger.Warn().Err(err).Str("src", p.manager.Src()).Msg("audio load error")
			a.Message = errmsg.Format(errmsg.OpLoadAudio, err)
		case playback.ActionPlayError:
			p.logger.Warn().Err(err).Str("src", p.manager.Src()).Msg("audio playback error")
			a.Message = errmsg.Format(errmsg.OpPlayAudio, err)
		}
		p.machine.Observe(a, func() bool { return p.generation.Load() == gen })
	}
}

func (p *Player) detachLocked() {
	p.generation.Add(1)
	if p.handle != nil {
		for _, r := range p.listeners {
			p.handle.Off(r.event, r.id)
		}
	}
	p.listeners = nil
	p.handle = nil
}

// Close detaches the player's listeners and unsubscribes from the manager.
// The shared handle stays loaded. Safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.detachLocked()
	p.mu.Unlock()
	p.manager.Unsubscribe(p.subID)
}

// Load makes src the shared source. Failures reach every consumer through
// the manager's broadcast.
func (p *Player) Load(opts engine.Options) error {
	_, err := p.manager.CreateInstance(opts)
	return err
}

// Snapshot returns this player's last published snapshot.
func (p *Player) Snapshot() playback.Snapshot { return p.machine.Snapshot() }

// Subscribe registers fn to run after every snapshot replacement.
func (p *Player) Subscribe(fn func()) (unsubscribe func()) { return p.machine.Subscribe(fn) }

// Play starts the shared handle unless it is already playing.
func (p *Player) Play() {
	if h := p.manager.Handle(); h != nil && !h.Playing() {
		h.Play()
	}
}

// Pause pauses the shared handle.
func (p *Player) Pause() {
	if h := p.manager.Handle(); h != nil {
		h.Pause()
	}
}

// TogglePlayPause pauses when this player's snapshot says playing, plays
// otherwise.
func (p *Player) TogglePlayPause() {
	if p.Snapshot().IsPlaying {
		p.Pause()
	} else {
		p.Play()
	}
}

// Stop stops playback and rewinds.
func (p *Player) Stop() {
	if h := p.manager.Handle(); h != nil {
		h.Stop()
	}
}

// SetVolume sets the output volume.
func (p *Player) SetVolume(level float64) {
	if h := p.manager.Handle(); h != nil {
		h.SetVolume(level)
	}
}

// SetRate sets the playback rate.
func (p *Player) SetRate(rate float64) {
	if h := p.manager.Handle(); h != nil {
		h.SetRate(rate)
	}
}

// Mute silences the output.
func (p *Player) Mute() {
	if h := p.manager.Handle(); h != nil {
		h.SetMuted(true)
	}
}

// Unmute restores the output.
func (p *Player) Unmute() {
	if h := p.manager.Handle(); h != nil {
		h.SetMuted(false)
	}
}

// ToggleMute flips the muted flag of this player's snapshot.
func (p *Player) ToggleMute() {
	if p.Snapshot().IsMuted {
		p.Unmute()
	} else {
		p.Mute()
	}
}

// LoopOn, LoopOff and ToggleLoop are broadcast so every consumer records the
// new loop state; engines emit no event for it.
func (p *Player) LoopOn() { p.setLoop(true) }

func (p *Player) LoopOff() { p.setLoop(false) }

func (p *Player) ToggleLoop() { p.setLoop(!p.Snapshot().IsLooping) }

func (p *Player) setLoop(loop bool) {
	h := p.manager.Handle()
	if h == nil {
		return
	}
	p.manager.Broadcast(playback.Action{Type: playback.ActionLoop, Handle: h, Loop: loop})
}

// Fade ramps the volume from one level to another over d.
func (p *Player) Fade(from, to float64, d time.Duration) {
	if h := p.manager.Handle(); h != nil {
		h.Fade(from, to, d)
	}
}

// Seek moves the playhead; the engine clamps pos.
func (p *Player) Seek(pos time.Duration) {
	if h := p.manager.Handle(); h != nil {
		h.Seek(pos)
	}
}

// Position returns the playhead, or 0 without a shared handle.
func (p *Player) Position() time.Duration {
	if h := p.manager.Handle(); h != nil {
		return h.Position()
	}
	return 0
}
