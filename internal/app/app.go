// internal/app/app.go

// Package app is the terminal front end: a bubbletea model rendering one
// playback session and driving it from the keyboard.
package app

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/keymap"
	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/position"
	"github.com/llehouerou/wavesync/internal/state"
)

const (
	seekStep     = 5 * time.Second
	volumeStep   = 0.05
	rateStep     = 0.25
	fadeDuration = 2 * time.Second
)

// Session is a playback session the model can load sources into. Both the
// per-consumer store and the shared-instance player satisfy it.
type Session interface {
	playback.Player
	Load(opts engine.Options) error
}

// Config wires a Model.
type Config struct {
	Player  Session
	Tracker *position.Tracker
	Prefs   state.Interface // optional

	// LoadOptions builds the options for a source.
	LoadOptions func(src string) engine.Options
	Sources     []string
	Shared      bool
	Logger      zerolog.Logger
}

// Model is the root application model.
type Model struct {
	Player      Session
	Tracker     *position.Tracker
	Keys        *keymap.Resolver
	Prefs       state.Interface
	LoadOptions func(src string) engine.Options
	Sources     []string
	Current     int
	Shared      bool

	Title    string
	Snapshot playback.Snapshot
	Position time.Duration
	ShowHelp bool
	Width    int
	Height   int

	logger        zerolog.Logger
	snapshots     *playback.Subscription
	positions     <-chan time.Duration
	stopPositions func()
}

// New creates the model and starts watching the session. Call Close when
// done.
func New(c Config) Model {
	m := Model{
		Player:      c.Player,
		Tracker:     c.Tracker,
		Keys:        keymap.NewResolver(keymap.All),
		Prefs:       c.Prefs,
		LoadOptions: c.LoadOptions,
		Sources:     c.Sources,
		Shared:      c.Shared,
		Snapshot:    c.Player.Snapshot(),
		Position:    c.Tracker.Position(),
		logger:      c.Logger,
		snapshots:   playback.Watch(c.Player),
	}
	if src := m.CurrentSource(); src != "" {
		m.Title = filepath.Base(src)
	}
	if m.LoadOptions == nil {
		m.LoadOptions = func(src string) engine.Options { return engine.Options{Src: src} }
	}
	m.positions, m.stopPositions = watchPositions(c.Tracker)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCurrent(),
		WatchSnapshots(m.snapshots),
		WatchPositions(m.positions),
	)
}

// Close stops watching the session. The session itself is left to its
// owner.
func (m Model) Close() {
	m.snapshots.Close()
	m.stopPositions()
}

// CurrentSource returns the source selected for playback, or "".
func (m Model) CurrentSource() string {
	if len(m.Sources) == 0 {
		return ""
	}
	return m.Sources[m.Current]
}

// loadCurrent loads the selected source and fetches its tags.
func (m *Model) loadCurrent() tea.Cmd {
	src := m.CurrentSource()
	if src == "" {
		return nil
	}
	m.Title = filepath.Base(src)
	if err := m.Player.Load(m.LoadOptions(src)); err != nil {
		// The session publishes the error as state.
		m.logger.Debug().Err(err).Str("src", src).Msg("load rejected")
		return nil
	}
	return ReadTrackInfoCmd(src)
}
