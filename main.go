package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesync/internal/app"
	"github.com/llehouerou/wavesync/internal/cache"
	"github.com/llehouerou/wavesync/internal/config"
	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/errmsg"
	"github.com/llehouerou/wavesync/internal/global"
	"github.com/llehouerou/wavesync/internal/icons"
	"github.com/llehouerou/wavesync/internal/instance"
	"github.com/llehouerou/wavesync/internal/mpris"
	"github.com/llehouerou/wavesync/internal/playback"
	"github.com/llehouerou/wavesync/internal/player"
	"github.com/llehouerou/wavesync/internal/position"
	"github.com/llehouerou/wavesync/internal/state"
	"github.com/llehouerou/wavesync/internal/stderr"
)

func main() {
	shared := flag.Bool("shared", false, "drive one shared instance instead of a per-session store")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [--shared] file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args(), *shared); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, sharedFlag bool) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	icons.Init(cfg.Icons)

	logFile, logger := openLog()
	if logFile != nil {
		defer logFile.Close()
	}

	sources, err := collectSources(args, cfg.DefaultFolder)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	// ALSA prints underruns straight to fd 2; keep them out of the TUI.
	if lines, err := stderr.Start(); err == nil {
		defer stderr.Stop()
		go func() {
			for line := range lines {
				logger.Warn().Str("component", "audio").Msg(line)
			}
		}()
	}

	prefsStore, err := state.Open(logger)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer prefsStore.Close()

	prefs, err := prefsStore.GetPreferences()
	if err != nil {
		logger.Warn().Msg(errmsg.Format(errmsg.OpPrefsLoad, err))
	}
	loadOptions := func(src string) engine.Options {
		opts := cfg.LoadOptions(src)
		if prefs != nil {
			opts = prefs.Apply(opts)
		}
		return opts
	}

	c := cache.New(player.Factory(player.WithLogger(logger.With().Str("component", "player").Logger())))
	defer c.Reset()

	sharedMode := sharedFlag || cfg.GetPlaybackConfig().Shared

	var (
		session app.Session
		remote  playback.Player
		current func() string
	)
	if sharedMode {
		manager := instance.NewManager(c,
			instance.WithLogger(logger.With().Str("component", "instance").Logger()),
			instance.WithSameSourcePolicy(cfg.SameSourcePolicy()),
		)
		defer manager.DestroyInstance()

		consumer := global.New(manager, global.WithLogger(logger))
		defer consumer.Close()
		controls := global.New(manager, global.WithLogger(logger))
		defer controls.Close()

		session, remote, current = consumer, controls, manager.Src
	} else {
		store := playback.NewStore(c, playback.WithLogger(logger.With().Str("component", "store").Logger()))
		defer store.Destroy()

		session, remote, current = store, store, store.Src
	}

	tracker := position.New(session, position.WithHighRefreshRate(cfg.GetPlaybackConfig().HighRefreshRate))
	defer tracker.Close()

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(remote, current)
		if err != nil {
			logger.Warn().Msg(errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	m := app.New(app.Config{
		Player:      session,
		Tracker:     tracker,
		Prefs:       prefsStore,
		LoadOptions: loadOptions,
		Sources:     sources,
		Shared:      sharedMode,
		Logger:      logger,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// openLog writes logs under the XDG state directory. Without it logging is
// discarded; stdout belongs to the TUI.
func openLog() (*os.File, zerolog.Logger) {
	path, err := xdg.StateFile(filepath.Join("wavesync", "wavesync.log"))
	if err != nil {
		return nil, zerolog.Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, zerolog.Nop()
	}
	return f, zerolog.New(f).With().Timestamp().Logger()
}

// collectSources keeps the playable arguments. With none given it falls back
// to the supported files directly inside folder.
func collectSources(args []string, folder string) ([]string, error) {
	var sources []string
	for _, arg := range args {
		if player.IsSupported(arg) {
			sources = append(sources, arg)
		}
	}
	if len(args) > 0 || folder == "" {
		return sources, nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() && player.IsSupported(e.Name()) {
			sources = append(sources, filepath.Join(folder, e.Name()))
		}
	}
	return sources, nil
}
