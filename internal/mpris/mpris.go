//go:build linux

// Package mpris exposes a playback session to desktop media controls over
// D-Bus.
package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/player"
)

const busName = "wavesync"

// Adapter serves a playback session over MPRIS. It is one more consumer
// of the session: it reads snapshots and drives the facade like the UI.
type Adapter struct {
	server *server.Server
}

// New starts serving p. current returns the loaded source, or "".
func New(p playback.Player, current func() string) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(busName, &rootAdapter{}, newPlayerAdapter(p, current)),
	}

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error            { return nil }
func (r *rootAdapter) Quit() error             { return nil }
func (r *rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "wavesync", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and
// OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
type playerAdapter struct {
	player  playback.Player
	current func() string

	mu       sync.Mutex
	infoSrc  string
	infoData player.TrackInfo
}

func newPlayerAdapter(p playback.Player, current func() string) *playerAdapter {
	return &playerAdapter{player: p, current: current}
}

// Next and Previous belong to the front end's source list.
func (p *playerAdapter) Next() error     { return nil }
func (p *playerAdapter) Previous() error { return nil }

func (p *playerAdapter) Pause() error {
	p.player.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.player.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.player.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.player.Play()
	return nil
}

// Seek moves relative to the current position.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.player.Position() + time.Duration(offset)*time.Microsecond
	p.player.Seek(max(pos, 0))
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.player.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.player.Snapshot().State() {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.player.Snapshot().Rate, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.player.SetRate(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	src := p.current()
	if src == "" {
		return types.Metadata{}, nil
	}
	info := p.trackInfo(src)

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(src)),
		Title:       info.Title,
		Album:       info.Album,
		TrackNumber: info.Track,
	}
	if info.Artist != "" {
		meta.Artist = []string{info.Artist}
	}
	if snap := p.player.Snapshot(); snap.IsReady && !snap.IsUnbounded() {
		meta.Length = types.Microseconds(snap.Duration.Microseconds())
	}
	if artPath := FindAlbumArt(src); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}
	return meta, nil
}

// trackInfo reads tags once per source.
func (p *playerAdapter) trackInfo(src string) player.TrackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.infoSrc != src {
		p.infoData, _ = player.ReadTrackInfo(src)
		p.infoSrc = src
	}
	return p.infoData
}

func (p *playerAdapter) Volume() (float64, error) {
	snap := p.player.Snapshot()
	if snap.IsMuted {
		return 0, nil
	}
	return snap.Volume, nil
}

func (p *playerAdapter) SetVolume(level float64) error {
	p.player.SetVolume(engine.ClampVolume(level))
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.player.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return engine.MinRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return engine.MaxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error)     { return false, nil }
func (p *playerAdapter) CanGoPrevious() (bool, error) { return false, nil }

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.player.Snapshot().IsReady, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.player.Snapshot().IsReady, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	snap := p.player.Snapshot()
	return snap.IsReady && !snap.IsUnbounded(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.player.Snapshot().IsLooping {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// Playlist looping has no meaning for a single source and maps to track.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	if status == types.LoopStatusNone {
		p.player.LoopOff()
	} else {
		p.player.LoopOn()
	}
	return nil
}

func formatTrackID(src string) string {
	h := fnv.New64a()
	h.Write([]byte(src))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
