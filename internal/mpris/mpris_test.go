//go:build linux

package mpris

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavesync/internal/cache"
	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/playback"
)

func newTestAdapter(t *testing.T) (*playerAdapter, *playback.Store, *engine.Mock) {
	t.Helper()
	f := &engine.MockFactory{}
	store := playback.NewStore(cache.New(f.New))
	t.Cleanup(store.Destroy)

	src := filepath.Join(t.TempDir(), "Song Title.mp3")
	if err := store.Load(engine.Options{Src: src}); err != nil {
		t.Fatal(err)
	}
	mock := f.Last()
	mock.FinishLoad()
	return newPlayerAdapter(store, store.Src), store, mock
}

func TestPlayerAdapter_Transport(t *testing.T) {
	a, store, _ := newTestAdapter(t)

	if status, _ := a.PlaybackStatus(); status != types.PlaybackStatusStopped {
		t.Errorf("initial status = %v, want Stopped", status)
	}

	_ = a.PlayPause()
	if status, _ := a.PlaybackStatus(); status != types.PlaybackStatusPlaying {
		t.Errorf("status after PlayPause = %v, want Playing", status)
	}

	_ = a.Stop()
	if !store.Snapshot().IsStopped {
		t.Error("Stop did not stop the store")
	}
}

func TestPlayerAdapter_Seek(t *testing.T) {
	a, _, mock := newTestAdapter(t)

	_ = a.SetPosition("", types.Microseconds(10*time.Second/time.Microsecond))
	if got := mock.Position(); got != 10*time.Second {
		t.Fatalf("position = %v, want 10s", got)
	}

	_ = a.Seek(types.Microseconds(-3 * time.Second / time.Microsecond))
	if got, _ := a.Position(); got != (7 * time.Second).Microseconds() {
		t.Errorf("Position() = %d, want 7s", got)
	}

	_ = a.Seek(types.Microseconds(-time.Minute / time.Microsecond))
	if got := mock.Position(); got != 0 {
		t.Errorf("seek before start = %v, want 0", got)
	}
}

func TestPlayerAdapter_VolumeRateLoop(t *testing.T) {
	a, store, _ := newTestAdapter(t)

	_ = a.SetVolume(1.5)
	if v, _ := a.Volume(); v != 1 {
		t.Errorf("Volume() = %v, want clamped 1", v)
	}
	_ = a.SetVolume(0.4)
	if v, _ := a.Volume(); v != 0.4 {
		t.Errorf("Volume() = %v, want 0.4", v)
	}
	store.Mute()
	if v, _ := a.Volume(); v != 0 {
		t.Errorf("muted Volume() = %v, want 0", v)
	}

	_ = a.SetRate(2)
	if r, _ := a.Rate(); r != 2 {
		t.Errorf("Rate() = %v, want 2", r)
	}

	_ = a.SetLoopStatus(types.LoopStatusPlaylist)
	if ls, _ := a.LoopStatus(); ls != types.LoopStatusTrack {
		t.Errorf("LoopStatus() = %v, want Track", ls)
	}
	_ = a.SetLoopStatus(types.LoopStatusNone)
	if store.Snapshot().IsLooping {
		t.Error("loop still on")
	}
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	a, store, _ := newTestAdapter(t)

	meta, err := a.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Title != "Song Title.mp3" {
		t.Errorf("Title = %q, want the base name", meta.Title)
	}
	if meta.Length != types.Microseconds(store.Snapshot().Duration.Microseconds()) {
		t.Errorf("Length = %d", meta.Length)
	}
	if !strings.HasPrefix(string(meta.TrackId), "/org/mpris/MediaPlayer2/Track/") {
		t.Errorf("TrackId = %q", meta.TrackId)
	}
}

func TestPlayerAdapter_NoSource(t *testing.T) {
	f := &engine.MockFactory{}
	store := playback.NewStore(cache.New(f.New))
	a := newPlayerAdapter(store, store.Src)

	meta, _ := a.Metadata()
	if meta.Title != "" {
		t.Errorf("Metadata() = %+v, want empty", meta)
	}
	if ok, _ := a.CanPlay(); ok {
		t.Error("CanPlay() = true with nothing loaded")
	}
	// Controls without a source are no-ops.
	_ = a.PlayPause()
	_ = a.Seek(1000)
}

func TestFormatTrackID_Stable(t *testing.T) {
	if formatTrackID("/a.mp3") != formatTrackID("/a.mp3") {
		t.Error("track id not stable")
	}
	if formatTrackID("/a.mp3") == formatTrackID("/b.mp3") {
		t.Error("different sources share a track id")
	}
}
