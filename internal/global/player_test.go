package global

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesync/internal/cache"
	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/instance"
	"github.com/llehouerou/wavesync/internal/playback"
)

func newShared(t *testing.T) (*instance.Manager, *engine.MockFactory) {
	t.Helper()
	f := &engine.MockFactory{}
	m := instance.NewManager(cache.New(f.New))
	t.Cleanup(m.DestroyInstance)
	return m, f
}

func TestPlayer_TwoConsumersAgree(t *testing.T) {
	m, f := newShared(t)
	a := New(m)
	b := New(m)
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Load(engine.Options{Src: "track-a.mp3"}))
	assert.True(t, a.Snapshot().IsLoading)
	assert.True(t, b.Snapshot().IsLoading)

	f.Last().FinishLoad()
	b.Play()

	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.True(t, a.Snapshot().IsPlaying)
	assert.Equal(t, 1, f.Count())
}

func TestPlayer_LoopOnReachesEveryConsumer(t *testing.T) {
	m, f := newShared(t)
	a := New(m)
	b := New(m)
	defer a.Close()
	defer b.Close()
	require.NoError(t, a.Load(engine.Options{Src: "a.mp3"}))
	h := f.Last()
	h.FinishLoad()

	var seenA, seenB []bool
	a.Subscribe(func() { seenA = append(seenA, a.Snapshot().IsLooping) })
	b.Subscribe(func() { seenB = append(seenB, b.Snapshot().IsLooping) })

	a.LoopOn()

	assert.True(t, h.Loop())
	assert.Equal(t, []bool{true}, seenA)
	assert.Equal(t, []bool{true}, seenB)

	b.ToggleLoop()
	assert.False(t, h.Loop())
	assert.False(t, a.Snapshot().IsLooping)
}

func TestPlayer_LateJoinerCatchesUp(t *testing.T) {
	m, f := newShared(t)
	first := New(m)
	defer first.Close()
	require.NoError(t, first.Load(engine.Options{Src: "a.mp3"}))
	f.Last().FinishLoad()

	late := New(m)
	defer late.Close()

	snap := late.Snapshot()
	assert.True(t, snap.IsReady)
	assert.True(t, snap.IsStopped)
	assert.Equal(t, 3*time.Minute, snap.Duration)
}

func TestPlayer_LateJoinerSeesPlayback(t *testing.T) {
	m, f := newShared(t)
	first := New(m)
	defer first.Close()
	require.NoError(t, first.Load(engine.Options{Src: "a.mp3"}))
	f.Last().FinishLoad()
	first.Play()

	late := New(m)
	defer late.Close()

	assert.True(t, late.Snapshot().IsPlaying)
	assert.Equal(t, first.Snapshot(), late.Snapshot())
}

func TestPlayer_NewSourceDetachesOldListeners(t *testing.T) {
	m, f := newShared(t)
	p := New(m)
	defer p.Close()

	require.NoError(t, p.Load(engine.Options{Src: "a.mp3"}))
	old := f.Last()
	require.NoError(t, p.Load(engine.Options{Src: "b.mp3"}))

	for _, ev := range engine.Events {
		assert.Zero(t, old.ListenerCount(ev), "listeners left on %v", ev)
	}
	old.EmitLoad()
	assert.True(t, p.Snapshot().IsLoading)
}

func TestPlayer_CloseLeavesInstanceLoaded(t *testing.T) {
	m, f := newShared(t)
	a := New(m)
	b := New(m)
	defer b.Close()
	require.NoError(t, a.Load(engine.Options{Src: "a.mp3"}))
	h := f.Last()

	a.Close()
	a.Close()

	assert.Equal(t, 1, m.Connections())
	assert.Same(t, h, m.Handle())
	assert.Zero(t, h.UnloadCount())

	before := a.Snapshot()
	h.FinishLoad()
	assert.Equal(t, before, a.Snapshot())
	assert.True(t, b.Snapshot().IsReady)
}

func TestPlayer_ControlsWithoutInstance(t *testing.T) {
	m, _ := newShared(t)
	p := New(m)
	defer p.Close()
	calls := 0
	p.Subscribe(func() { calls++ })

	p.Play()
	p.TogglePlayPause()
	p.Stop()
	p.SetVolume(0.5)
	p.SetRate(2)
	p.ToggleMute()
	p.LoopOn()
	p.ToggleLoop()
	p.Fade(1, 0, time.Second)
	p.Seek(time.Second)

	assert.Zero(t, p.Position())
	assert.Zero(t, calls)
	assert.Equal(t, playback.DefaultSnapshot(), p.Snapshot())
}

func TestPlayer_LoadErrorMessage(t *testing.T) {
	m, f := newShared(t)
	p := New(m)
	defer p.Close()
	require.NoError(t, p.Load(engine.Options{Src: "missing.mp3"}))

	f.Last().FailLoad(4)

	assert.Equal(t, "Failed to load audio source: engine error 4", p.Snapshot().Error)
}

func TestPlayer_CreateFailureReachesEveryConsumer(t *testing.T) {
	m, f := newShared(t)
	a := New(m)
	b := New(m)
	defer a.Close()
	defer b.Close()
	require.NoError(t, a.Load(engine.Options{Src: "track-a.mp3", Loop: true}))
	old := f.Last()
	old.FinishLoad()
	a.Play()
	require.True(t, b.Snapshot().IsPlaying)

	f.SetError(errors.New("no device"))
	err := a.Load(engine.Options{Src: "track-b.mp3"})

	require.Error(t, err)
	assert.Nil(t, m.Handle())
	for _, p := range []*Player{a, b} {
		snap := p.Snapshot()
		assert.Contains(t, snap.Error, "Failed to create audio handle")
		assert.False(t, snap.IsReady)
		assert.False(t, snap.IsPlaying)
		assert.False(t, snap.IsLooping)
		assert.Zero(t, snap.Duration)
		assert.True(t, snap.IsUnloaded)
	}
	for _, ev := range engine.Events {
		assert.Zero(t, old.ListenerCount(ev), "listeners left on %v", ev)
	}
}

func TestPlayer_DestroyInstanceResetsEveryConsumer(t *testing.T) {
	m, f := newShared(t)
	a := New(m)
	b := New(m)
	defer a.Close()
	defer b.Close()
	require.NoError(t, a.Load(engine.Options{Src: "a.mp3"}))
	h := f.Last()
	h.FinishLoad()
	b.Play()

	m.DestroyInstance()

	assert.Equal(t, playback.DefaultSnapshot(), a.Snapshot())
	assert.Equal(t, playback.DefaultSnapshot(), b.Snapshot())
	for _, ev := range engine.Events {
		assert.Zero(t, h.ListenerCount(ev), "listeners left on %v", ev)
	}

	// Late events from the released handle are ignored.
	h.EmitLoad()
	assert.Equal(t, playback.DefaultSnapshot(), a.Snapshot())
}

func TestPlayer_RetryAfterLoadError(t *testing.T) {
	m, f := newShared(t)
	p := New(m)
	defer p.Close()
	require.NoError(t, p.Load(engine.Options{Src: "flaky.mp3"}))
	f.Last().FailLoad(2)
	require.NotEmpty(t, p.Snapshot().Error)

	require.NoError(t, p.Load(engine.Options{Src: "flaky.mp3"}))

	assert.Equal(t, 2, f.Count())
	snap := p.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Empty(t, snap.Error)

	f.Last().FinishLoad()
	assert.True(t, p.Snapshot().IsReady)
}
