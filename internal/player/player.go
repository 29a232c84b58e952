// Package player is the beep-backed audio engine. A Player decodes one local
// file and plays it through an Output, reporting its lifecycle as
// engine events.
package player

import (
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesync/internal/engine"
)

// Verify Player implements engine.Handle at compile time.
var _ engine.Handle = (*Player)(nil)

const (
	resampleQuality = 4
	fadeStep        = 20 * time.Millisecond
)

// Player is an engine.Handle for one source.
//
// Loading happens on a background goroutine. Events are delivered in order on
// a per-player goroutine. Lock order is p.mu, then the output lock; the audio
// goroutine only ever holds the output lock.
type Player struct {
	opts      engine.Options
	out       Output
	logger    zerolog.Logger
	listeners engine.Listeners
	events    *dispatcher

	loop     atomic.Bool
	loadOnce sync.Once

	mu          sync.Mutex
	state       engine.LoadState
	source      beep.StreamSeekCloser
	format      beep.Format
	outRate     beep.SampleRate
	track       *track
	resampler   *beep.Resampler
	gain        *effects.Volume
	ctrl        *beep.Ctrl
	playing     bool
	pendingPlay bool
	volume      float64
	rate        float64
	muted       bool
	fadeCancel  chan struct{}
}

// Option configures a Player.
type Option func(*Player)

// WithOutput sets where audio is played. The default is Speaker.
func WithOutput(o Output) Option {
	return func(p *Player) { p.out = o }
}

// WithLogger sets the player logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// New returns a player for opts.Src in the Loading state. Nothing is read
// until Load is called.
func New(opts engine.Options, options ...Option) *Player {
	p := &Player{
		opts:   opts,
		out:    Speaker,
		logger: zerolog.Nop(),
		events: newDispatcher(),
		state:  engine.Loading,
		volume: opts.InitialVolume(),
		rate:   opts.InitialRate(),
		muted:  opts.Mute,
	}
	for _, o := range options {
		o(p)
	}
	p.loop.Store(opts.Loop)
	return p
}

// Load opens and decodes the source on a background goroutine, then emits
// load or loaderror.
func (p *Player) Load() {
	p.loadOnce.Do(func() {
		if p.State() == engine.Unloaded {
			return
		}
		go p.load()
	})
}

// Factory returns an engine.Factory building Players with options.
func Factory(options ...Option) engine.Factory {
	return func(opts engine.Options) (engine.Handle, error) {
		return New(opts, options...), nil
	}
}

func (p *Player) load() {
	source, format, err := openSource(p.opts.Src, p.opts.Format)
	if err != nil {
		p.failLoad(err)
		return
	}
	outRate, err := p.out.Init(format.SampleRate)
	if err != nil {
		source.Close()
		p.failLoad(err)
		return
	}

	p.mu.Lock()
	if p.state == engine.Unloaded {
		p.mu.Unlock()
		source.Close()
		return
	}
	p.source = source
	p.format = format
	p.outRate = outRate
	p.track = &track{source: source, loop: &p.loop, onEnd: p.onTrackEnd}
	p.resampler = beep.ResampleRatio(resampleQuality, p.ratioLocked(), p.track)
	p.gain = &effects.Volume{
		Streamer: p.resampler,
		Base:     2,
		Volume:   levelToVolume(p.volume),
		Silent:   p.muted,
	}
	p.ctrl = &beep.Ctrl{Streamer: p.gain, Paused: true}
	p.state = engine.Loaded
	ctrl := p.ctrl
	autoplay := p.opts.Autoplay || p.pendingPlay
	p.pendingPlay = false
	p.mu.Unlock()

	p.out.Play(ctrl)
	p.logger.Debug().
		Str("src", p.opts.Src).
		Int("sample_rate", int(format.SampleRate)).
		Dur("duration", format.SampleRate.D(source.Len())).
		Msg("audio loaded")
	p.emit(engine.EventLoad, nil)
	if autoplay {
		p.Play()
	}
}

func (p *Player) failLoad(err error) {
	p.mu.Lock()
	p.state = engine.Unloaded
	p.mu.Unlock()

	code := loadErrorCode(err)
	p.logger.Debug().Err(err).Str("src", p.opts.Src).Int("code", code).Msg("audio load failed")
	p.emit(engine.EventLoadError, &engine.Error{Code: code, Err: err})
}

func loadErrorCode(err error) int {
	var decodeErr *decodeError
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return engine.CodeUnsupported
	case errors.As(err, &decodeErr):
		return engine.CodeDecode
	case errors.As(err, &pathErr):
		return engine.CodeIO
	default:
		return engine.CodeAborted
	}
}

// ratioLocked is the resampling ratio for the current rate.
func (p *Player) ratioLocked() float64 {
	return p.rate * float64(p.format.SampleRate) / float64(p.outRate)
}

func (p *Player) emit(ev engine.Event, err error) {
	p.events.post(func() { p.listeners.Emit(ev, err) })
}

// onTrackEnd is called on the audio goroutine with the output lock held.
func (p *Player) onTrackEnd(looped bool) {
	if looped {
		p.emit(engine.EventEnd, nil)
		return
	}
	p.events.post(p.finish)
}

// finish parks a source that played to its end back at the start.
func (p *Player) finish() {
	p.mu.Lock()
	if p.state != engine.Loaded {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.out.Lock()
	p.ctrl.Paused = true
	err := p.track.rewind()
	p.out.Unlock()
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn().Err(err).Str("src", p.opts.Src).Msg("rewind after end failed")
	}
	p.listeners.Emit(engine.EventEnd, nil)
}

func (p *Player) Play() {
	p.mu.Lock()
	switch {
	case p.state == engine.Loading:
		p.pendingPlay = true
		p.mu.Unlock()
		return
	case p.state != engine.Loaded || p.playing:
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.out.Lock()
	p.ctrl.Paused = false
	p.out.Unlock()
	p.mu.Unlock()
	p.emit(engine.EventPlay, nil)
}

func (p *Player) Pause() {
	p.mu.Lock()
	p.pendingPlay = false
	if p.state != engine.Loaded {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.out.Lock()
	p.ctrl.Paused = true
	p.out.Unlock()
	p.mu.Unlock()
	p.emit(engine.EventPause, nil)
}

func (p *Player) Stop() {
	p.mu.Lock()
	p.pendingPlay = false
	if p.state != engine.Loaded {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.out.Lock()
	p.ctrl.Paused = true
	err := p.track.rewind()
	p.out.Unlock()
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn().Err(err).Str("src", p.opts.Src).Msg("rewind on stop failed")
	}
	p.emit(engine.EventStop, nil)
}

// Seek moves to pos, clamped to [0, Duration].
func (p *Player) Seek(pos time.Duration) {
	p.mu.Lock()
	if p.state != engine.Loaded {
		p.mu.Unlock()
		return
	}
	length := p.source.Len()
	sample := min(max(p.format.SampleRate.N(pos), 0), length)
	p.out.Lock()
	p.track.ended = false
	err := p.source.Seek(sample)
	p.out.Unlock()
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn().Err(err).Str("src", p.opts.Src).Dur("pos", pos).Msg("seek failed")
	}
	p.emit(engine.EventSeek, nil)
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != engine.Loaded {
		return 0
	}
	p.out.Lock()
	pos := p.source.Position()
	p.out.Unlock()
	return p.format.SampleRate.D(pos)
}

func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	if p.gain != nil {
		p.out.Lock()
		p.gain.Silent = muted
		p.out.Unlock()
	}
	p.mu.Unlock()
	p.emit(engine.EventMute, nil)
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// SetVolume sets the level in [0, 1] and cancels a running fade.
func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	p.cancelFadeLocked()
	p.setVolumeLocked(level)
	p.mu.Unlock()
	p.emit(engine.EventVolume, nil)
}

func (p *Player) setVolumeLocked(level float64) {
	p.volume = engine.ClampVolume(level)
	if p.gain != nil {
		p.out.Lock()
		p.gain.Volume = levelToVolume(p.volume)
		p.out.Unlock()
	}
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) SetRate(rate float64) {
	p.mu.Lock()
	p.rate = engine.ClampRate(rate)
	if p.resampler != nil {
		p.out.Lock()
		p.resampler.SetRatio(p.ratioLocked())
		p.out.Unlock()
	}
	p.mu.Unlock()
	p.emit(engine.EventRate, nil)
}

func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetLoop takes effect at the next end of the source. It emits no event.
func (p *Player) SetLoop(loop bool) { p.loop.Store(loop) }

func (p *Player) Loop() bool { return p.loop.Load() }

// Fade ramps the volume linearly from one level to another over d, then
// emits fade. A new fade or SetVolume cancels a running one.
func (p *Player) Fade(from, to float64, d time.Duration) {
	p.mu.Lock()
	p.cancelFadeLocked()
	if p.state == engine.Unloaded {
		p.mu.Unlock()
		return
	}
	p.setVolumeLocked(from)
	if d <= 0 {
		p.setVolumeLocked(to)
		p.mu.Unlock()
		p.emit(engine.EventFade, nil)
		return
	}
	cancel := make(chan struct{})
	p.fadeCancel = cancel
	p.mu.Unlock()

	go p.runFade(from, to, d, cancel)
}

func (p *Player) runFade(from, to float64, d time.Duration, cancel <-chan struct{}) {
	ticker := time.NewTicker(fadeStep)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}
		progress := min(float64(time.Since(start))/float64(d), 1)

		p.mu.Lock()
		select {
		case <-cancel:
			p.mu.Unlock()
			return
		default:
		}
		p.setVolumeLocked(from + (to-from)*progress)
		if progress >= 1 {
			p.fadeCancel = nil
		}
		p.mu.Unlock()

		if progress >= 1 {
			p.emit(engine.EventFade, nil)
			return
		}
	}
}

func (p *Player) cancelFadeLocked() {
	if p.fadeCancel != nil {
		close(p.fadeCancel)
		p.fadeCancel = nil
	}
}

// Duration is 0 until loaded and engine.Unbounded for streams.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != engine.Loaded {
		return 0
	}
	if p.opts.Stream {
		return engine.Unbounded
	}
	return p.format.SampleRate.D(p.source.Len())
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) State() engine.LoadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) On(ev engine.Event, fn engine.Listener) engine.ListenerID {
	return p.listeners.On(ev, fn)
}

func (p *Player) Off(ev engine.Event, id engine.ListenerID) {
	p.listeners.Off(ev, id)
}

// Unload stops playback, releases the source and stops event delivery.
// Safe to call more than once.
func (p *Player) Unload() {
	p.mu.Lock()
	p.state = engine.Unloaded
	p.playing = false
	p.pendingPlay = false
	p.cancelFadeLocked()
	if p.ctrl != nil {
		p.out.Lock()
		// A Ctrl without a streamer is dropped from the mixer.
		p.ctrl.Streamer = nil
		p.out.Unlock()
		p.ctrl = nil
	}
	source := p.source
	p.source = nil
	p.track = nil
	p.resampler = nil
	p.gain = nil
	p.mu.Unlock()

	if source != nil {
		if err := source.Close(); err != nil {
			p.logger.Debug().Err(err).Str("src", p.opts.Src).Msg("close source")
		}
	}
	p.events.close()
}
