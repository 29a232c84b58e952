package player

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesync/internal/engine"
)

const testRate = beep.SampleRate(8000)

// fakeOutput mixes in memory; tests pull samples to drive playback.
type fakeOutput struct {
	mu        sync.Mutex
	initErr   error
	streamers []beep.Streamer
}

func (o *fakeOutput) Init(sr beep.SampleRate) (beep.SampleRate, error) {
	if o.initErr != nil {
		return 0, o.initErr
	}
	return sr, nil
}

func (o *fakeOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s)
}

func (o *fakeOutput) Lock() { o.mu.Lock() }

func (o *fakeOutput) Unlock() { o.mu.Unlock() }

// Pull streams n samples through every playing streamer.
func (o *fakeOutput) Pull(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := make([][2]float64, n)
	kept := o.streamers[:0]
	for _, s := range o.streamers {
		if _, ok := s.Stream(buf); ok {
			kept = append(kept, s)
		}
	}
	o.streamers = kept
}

func (o *fakeOutput) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streamers)
}

// writeWAV writes a one-second 8 kHz stereo tone.
func writeWAV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.25, -0.25}
		}
		return len(samples), true
	})
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(testRate.N(time.Second), tone), format))
	return path
}

// recorder collects events from every listener slot.
type recorder struct {
	ch chan recorded
}

type recorded struct {
	ev  engine.Event
	err error
}

func record(h engine.Handle) *recorder {
	r := &recorder{ch: make(chan recorded, 64)}
	for _, ev := range engine.Events {
		h.On(ev, func(err error) { r.ch <- recorded{ev: ev, err: err} })
	}
	return r
}

func (r *recorder) waitFor(t *testing.T, want engine.Event) error {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.ch:
			if got.ev == want {
				return got.err
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %v", want)
			return nil
		}
	}
}

// newLoaded builds a player on a fresh tone and waits until it is loaded.
func newLoaded(t *testing.T, opts engine.Options) (*Player, *fakeOutput, *recorder) {
	t.Helper()
	out := &fakeOutput{}
	if opts.Src == "" {
		opts.Src = writeWAV(t, t.TempDir())
	}
	p := newWithRecorder(opts, out)
	t.Cleanup(p.Unload)
	p.rec.waitFor(t, engine.EventLoad)
	return p.Player, out, p.rec
}

type recordedPlayer struct {
	*Player
	rec *recorder
}

// newWithRecorder attaches the recorder, then starts loading.
func newWithRecorder(opts engine.Options, out *fakeOutput) recordedPlayer {
	p := New(opts, WithOutput(out))
	rec := record(p)
	p.Load()
	return recordedPlayer{Player: p, rec: rec}
}

func TestPlayer_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a wav file at all"), 0o600))

	tests := []struct {
		name     string
		src      string
		format   string
		wantCode int
	}{
		{"unsupported extension", filepath.Join(dir, "song.xyz"), "", engine.CodeUnsupported},
		{"unsupported hint", garbage, "aiff", engine.CodeUnsupported},
		{"missing file", filepath.Join(dir, "missing.mp3"), "", engine.CodeIO},
		{"undecodable", garbage, "", engine.CodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newWithRecorder(engine.Options{Src: tt.src, Format: tt.format}, &fakeOutput{})
			defer p.Unload()

			err := p.rec.waitFor(t, engine.EventLoadError)

			var engErr *engine.Error
			require.ErrorAs(t, err, &engErr)
			assert.Equal(t, tt.wantCode, engErr.Code)
			assert.Equal(t, engine.Unloaded, p.State())
			assert.Zero(t, p.Duration())
		})
	}
}

func TestPlayer_OutputInitError(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	p := newWithRecorder(engine.Options{Src: writeWAV(t, t.TempDir())}, out)
	defer p.Unload()

	err := p.rec.waitFor(t, engine.EventLoadError)

	assert.ErrorContains(t, err, "no device")
}

func TestPlayer_Load(t *testing.T) {
	p, out, _ := newLoaded(t, engine.Options{})

	assert.Equal(t, engine.Loaded, p.State())
	assert.Equal(t, time.Second, p.Duration())
	assert.False(t, p.Playing())
	assert.Zero(t, p.Position())
	assert.Equal(t, 1, out.Len())
}

func TestPlayer_StreamIsUnbounded(t *testing.T) {
	p, _, _ := newLoaded(t, engine.Options{Stream: true})
	assert.Equal(t, engine.Unbounded, p.Duration())
}

func TestPlayer_AutoplayEmitsLoadThenPlay(t *testing.T) {
	p, _, rec := newLoaded(t, engine.Options{Autoplay: true})

	rec.waitFor(t, engine.EventPlay)
	assert.True(t, p.Playing())
}

func TestPlayer_PlayWhileLoadingIsDeferred(t *testing.T) {
	out := &fakeOutput{}
	p := newWithRecorder(engine.Options{Src: writeWAV(t, t.TempDir())}, out)
	defer p.Unload()

	p.Play()

	p.rec.waitFor(t, engine.EventPlay)
	assert.True(t, p.Playing())
}

func TestPlayer_PlaysToEnd(t *testing.T) {
	p, out, rec := newLoaded(t, engine.Options{})

	p.Play()
	rec.waitFor(t, engine.EventPlay)
	out.Pull(testRate.N(time.Second) + 2000)

	rec.waitFor(t, engine.EventEnd)
	assert.False(t, p.Playing())
	assert.Zero(t, p.Position())
	assert.Equal(t, 1, out.Len(), "an ended source stays in the mixer")
}

func TestPlayer_LoopKeepsPlaying(t *testing.T) {
	p, out, rec := newLoaded(t, engine.Options{Loop: true})
	assert.True(t, p.Loop())

	p.Play()
	out.Pull(testRate.N(time.Second) + 2000)

	rec.waitFor(t, engine.EventEnd)
	assert.True(t, p.Playing())
	assert.Positive(t, p.Position())
}

func TestPlayer_PauseAndStop(t *testing.T) {
	p, out, rec := newLoaded(t, engine.Options{})
	p.Play()
	out.Pull(2000)

	p.Pause()
	rec.waitFor(t, engine.EventPause)
	assert.False(t, p.Playing())
	paused := p.Position()
	assert.Positive(t, paused)

	out.Pull(2000)
	assert.Equal(t, paused, p.Position())

	p.Stop()
	rec.waitFor(t, engine.EventStop)
	assert.Zero(t, p.Position())
}

func TestPlayer_SeekClamps(t *testing.T) {
	p, _, rec := newLoaded(t, engine.Options{})

	p.Seek(500 * time.Millisecond)
	rec.waitFor(t, engine.EventSeek)
	assert.Equal(t, 500*time.Millisecond, p.Position())

	p.Seek(5 * time.Second)
	rec.waitFor(t, engine.EventSeek)
	assert.Equal(t, time.Second, p.Position())

	p.Seek(-time.Second)
	rec.waitFor(t, engine.EventSeek)
	assert.Zero(t, p.Position())
}

func TestPlayer_Setters(t *testing.T) {
	p, _, rec := newLoaded(t, engine.Options{})

	p.SetVolume(1.7)
	rec.waitFor(t, engine.EventVolume)
	assert.InDelta(t, 1.0, p.Volume(), 1e-9)

	p.SetRate(0.1)
	rec.waitFor(t, engine.EventRate)
	assert.InDelta(t, engine.MinRate, p.Rate(), 1e-9)

	p.SetMuted(true)
	rec.waitFor(t, engine.EventMute)
	assert.True(t, p.Muted())

	p.SetLoop(true)
	assert.True(t, p.Loop())
}

func TestPlayer_InitialOptions(t *testing.T) {
	vol := 0.3
	rate := 2.0
	p, _, _ := newLoaded(t, engine.Options{Volume: &vol, Rate: &rate, Mute: true})

	assert.InDelta(t, 0.3, p.Volume(), 1e-9)
	assert.InDelta(t, 2.0, p.Rate(), 1e-9)
	assert.True(t, p.Muted())
}

func TestPlayer_Fade(t *testing.T) {
	p, _, rec := newLoaded(t, engine.Options{})

	p.Fade(1, 0.2, 0)
	rec.waitFor(t, engine.EventFade)
	assert.InDelta(t, 0.2, p.Volume(), 1e-9)

	p.Fade(0, 0.8, 100*time.Millisecond)
	rec.waitFor(t, engine.EventFade)
	assert.InDelta(t, 0.8, p.Volume(), 1e-9)
}

func TestPlayer_SetVolumeCancelsFade(t *testing.T) {
	p, _, rec := newLoaded(t, engine.Options{})

	p.Fade(0, 1, time.Hour)
	p.SetVolume(0.4)
	rec.waitFor(t, engine.EventVolume)

	time.Sleep(3 * fadeStep)
	assert.InDelta(t, 0.4, p.Volume(), 1e-9)
}

func TestPlayer_UnloadIsIdempotent(t *testing.T) {
	p, out, _ := newLoaded(t, engine.Options{})
	p.Play()

	p.Unload()
	p.Unload()

	assert.Equal(t, engine.Unloaded, p.State())
	assert.False(t, p.Playing())
	assert.Zero(t, p.Position())
	assert.Zero(t, p.Duration())

	// The mixer drops the detached streamer on its next pull.
	out.Pull(10)
	assert.Zero(t, out.Len())

	// Controls on an unloaded player do nothing.
	p.Play()
	p.Seek(time.Second)
	p.Stop()
	assert.False(t, p.Playing())
}

func TestFactory_DoesNotLoad(t *testing.T) {
	out := &fakeOutput{}
	h, err := Factory(WithOutput(out))(engine.Options{Src: writeWAV(t, t.TempDir())})
	require.NoError(t, err)
	defer h.Unload()

	assert.IsType(t, &Player{}, h)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, engine.Loading, h.State())
	assert.Zero(t, out.Len())
}

func TestPlayer_LoadAfterUnloadDoesNothing(t *testing.T) {
	out := &fakeOutput{}
	p := New(engine.Options{Src: writeWAV(t, t.TempDir())}, WithOutput(out))

	p.Unload()
	p.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, engine.Unloaded, p.State())
	assert.Zero(t, out.Len())
}
