package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesync/internal/cache"
	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/player"
	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/position"
	"github.com/llehouerou/wavesync/internal/state"
	"github.com/llehouerou/wavesync/internal/ui/testutil"
)

type harness struct {
	model   Model
	store   *playback.Store
	factory *engine.MockFactory
	prefs   *state.Mock
}

func newHarness(t *testing.T, sources ...string) *harness {
	t.Helper()
	f := &engine.MockFactory{}
	store := playback.NewStore(cache.New(f.New))
	tracker := position.New(store)
	prefs := state.NewMock()
	t.Cleanup(func() {
		tracker.Close()
		store.Destroy()
	})

	m := New(Config{
		Player:  store,
		Tracker: tracker,
		Prefs:   prefs,
		Sources: sources,
	})
	t.Cleanup(m.Close)
	return &harness{model: m, store: store, factory: f, prefs: prefs}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) key(k string) tea.Cmd {
	switch k {
	case " ":
		return h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	case "right":
		return h.send(tea.KeyMsg{Type: tea.KeyRight})
	case "left":
		return h.send(tea.KeyMsg{Type: tea.KeyLeft})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// drain applies every queued snapshot change.
func (h *harness) drain() {
	for {
		select {
		case c := <-h.model.snapshots.Changed:
			h.send(SnapshotMsg(c))
		default:
			return
		}
	}
}

// start runs Init and finishes loading the first source.
func (h *harness) start(t *testing.T) *engine.Mock {
	t.Helper()
	h.model.Init()
	require.Equal(t, 1, h.factory.Count())
	mock := h.factory.Last()
	mock.FinishLoad()
	h.drain()
	require.True(t, h.model.Snapshot.IsReady)
	return mock
}

func TestModel_InitLoadsFirstSource(t *testing.T) {
	h := newHarness(t, "/music/a.mp3", "/music/b.mp3")

	assert.Equal(t, "a.mp3", h.model.Title)
	h.model.Init()

	assert.Equal(t, "/music/a.mp3", h.store.Src())
	assert.True(t, h.store.Snapshot().IsLoading)
}

func TestModel_NoSources(t *testing.T) {
	h := newHarness(t)

	h.model.Init()

	assert.Zero(t, h.factory.Count())
	assert.Contains(t, testutil.StripANSI(h.model.View()), "No source")
}

func TestModel_PlayPause(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")
	h.start(t)

	h.key(" ")
	h.drain()
	assert.True(t, h.model.Snapshot.IsPlaying)

	h.key(" ")
	h.drain()
	assert.True(t, h.model.Snapshot.IsPaused || h.model.Snapshot.IsStopped)
	assert.False(t, h.model.Snapshot.IsPlaying)
}

func TestModel_OutputKeys(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")
	h.start(t)

	h.key("-")
	h.drain()
	assert.InDelta(t, 0.95, h.model.Snapshot.Volume, 1e-9)

	h.key("+")
	h.key("+")
	h.drain()
	assert.InDelta(t, 1.0, h.model.Snapshot.Volume, 1e-9)

	h.key("]")
	h.drain()
	assert.InDelta(t, 1.25, h.model.Snapshot.Rate, 1e-9)

	h.key("L")
	h.drain()
	assert.True(t, h.model.Snapshot.IsLooping)

	h.key("m")
	h.drain()
	assert.True(t, h.model.Snapshot.IsMuted)
}

func TestModel_FadeOut(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")
	mock := h.start(t)

	h.key("f")

	require.Len(t, mock.Fades(), 1)
	assert.Equal(t, engine.Fade{From: 1, To: 0, Duration: fadeDuration}, mock.Fades()[0])
}

func TestModel_SeekUpdatesPosition(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")
	h.start(t)

	h.key("right")
	assert.Equal(t, seekStep, h.model.Position)

	h.key("left")
	h.key("left")
	assert.Zero(t, h.model.Position)
}

func TestModel_SavesChangedPreferences(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")
	h.start(t)
	before := h.prefs.Saves()

	h.key(" ")
	h.drain()
	assert.Equal(t, before, h.prefs.Saves(), "play does not touch preferences")

	h.key("m")
	h.drain()
	prefs, _ := h.prefs.GetPreferences()
	require.NotNil(t, prefs)
	assert.True(t, prefs.Muted)
	assert.Greater(t, h.prefs.Saves(), before)
}

func TestModel_NextSource(t *testing.T) {
	h := newHarness(t, "/music/a.mp3", "/music/b.mp3")
	h.start(t)

	cmd := h.key("n")

	require.NotNil(t, cmd)
	assert.Equal(t, 1, h.model.Current)
	assert.Equal(t, "b.mp3", h.model.Title)
	assert.Equal(t, "/music/b.mp3", h.store.Src())
	assert.Equal(t, 2, h.factory.Count())

	h.key("n")
	assert.Zero(t, h.model.Current, "next wraps around")
}

func TestModel_TrackInfo(t *testing.T) {
	h := newHarness(t, "/music/a.mp3", "/music/b.mp3")
	h.model.Init()

	h.send(TrackInfoMsg{Src: "/music/b.mp3", Info: player.TrackInfo{Title: "Other"}})
	assert.Equal(t, "a.mp3", h.model.Title, "tags of another source are ignored")

	h.send(TrackInfoMsg{Src: "/music/a.mp3", Info: player.TrackInfo{Artist: "Artist", Title: "Song"}})
	assert.Equal(t, "Artist - Song", h.model.Title)
}

func TestModel_PositionMsg(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")

	cmd := h.send(PositionMsg(42 * time.Second))

	assert.Equal(t, 42*time.Second, h.model.Position)
	assert.NotNil(t, cmd, "keeps watching positions")
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")

	cmd := h.key("q")

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	select {
	case <-h.model.snapshots.Done:
	default:
		t.Error("snapshot subscription still open after quit")
	}
}

func TestModel_View(t *testing.T) {
	h := newHarness(t, "/music/a.mp3", "/music/b.mp3")
	h.send(tea.WindowSizeMsg{Width: 60, Height: 10})

	view := testutil.StripANSI(h.model.View())
	assert.Contains(t, view, "a.mp3")
	assert.Contains(t, view, "1/2")
	assert.NotContains(t, view, "Play/pause")

	h.key("?")
	view = testutil.StripANSI(h.model.View())
	assert.Contains(t, view, "space  Play/pause")
	for _, line := range strings.Split(view, "\n")[:5] {
		assert.Equal(t, 60, testutil.MeasureWidth(line), line)
	}
}

func TestWatchPositions_KeepsLatest(t *testing.T) {
	h := newHarness(t, "/music/a.mp3")
	h.start(t)

	h.model.Tracker.Seek(20 * time.Second)
	h.model.Tracker.Seek(30 * time.Second)

	msg := WatchPositions(h.model.positions)()
	assert.Equal(t, PositionMsg(30*time.Second), msg)
}
