package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/instance"
)

type Config struct {
	DefaultFolder string `koanf:"default_folder"`
	Icons         string `koanf:"icons"` // "nerd", "unicode", or "none"

	Playback PlaybackConfig `koanf:"playback"`

	// Desktop media controls (linux only)
	MPRIS MPRISConfig `koanf:"mpris"`
}

// PlaybackConfig holds the load options and consumer mode.
type PlaybackConfig struct {
	InitialVolume   *float64 `koanf:"initial_volume"`    // 0-1 (default: 1)
	InitialRate     *float64 `koanf:"initial_rate"`      // 0.5-4 (default: 1)
	InitialMute     bool     `koanf:"initial_mute"`      // start muted
	Loop            bool     `koanf:"loop"`              // loop every source
	Autoplay        *bool    `koanf:"autoplay"`          // play once loaded (default: true)
	Stream          bool     `koanf:"stream"`            // treat sources as unbounded
	Format          string   `koanf:"format"`            // decoder override, e.g. "mp3"
	HighRefreshRate bool     `koanf:"high_refresh_rate"` // sample position every frame
	Shared          bool     `koanf:"shared"`            // one instance for every consumer
	SameSource      string   `koanf:"same_source"`       // "replace" or "keep" (default: "replace")
}

// MPRISConfig holds the desktop media controls settings.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

func Load() (*Config, error) {
	return load(getConfigPaths())
}

func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Last existing file wins
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		DefaultFolder: "", // empty means use cwd
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultFolder != "" {
		cfg.DefaultFolder = expandPath(cfg.DefaultFolder)
	}

	if _, err := instance.ParseSameSourcePolicy(cfg.Playback.SameSource); err != nil {
		return nil, fmt.Errorf("playback.same_source: %w", err)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavesync/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wavesync", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.InitialVolume == nil {
		cfg.InitialVolume = ptr(1.0)
	} else {
		cfg.InitialVolume = ptr(engine.ClampVolume(*cfg.InitialVolume))
	}
	if cfg.InitialRate == nil {
		cfg.InitialRate = ptr(1.0)
	} else {
		cfg.InitialRate = ptr(engine.ClampRate(*cfg.InitialRate))
	}
	if cfg.Autoplay == nil {
		cfg.Autoplay = ptr(true)
	}
	if cfg.SameSource == "" {
		cfg.SameSource = instance.ReplaceSameSource.String()
	}

	return cfg
}

// SameSourcePolicy returns the configured policy, ReplaceSameSource when the
// value is missing. Load has already rejected unknown values.
func (c *Config) SameSourcePolicy() instance.SameSourcePolicy {
	p, _ := instance.ParseSameSourcePolicy(c.Playback.SameSource)
	return p
}

// MPRISEnabled reports whether desktop media controls should be started.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// LoadOptions builds the engine options for src.
func (c *Config) LoadOptions(src string) engine.Options {
	pc := c.GetPlaybackConfig()
	return engine.Options{
		Src:      expandPath(src),
		Format:   pc.Format,
		Loop:     pc.Loop,
		Volume:   pc.InitialVolume,
		Rate:     pc.InitialRate,
		Mute:     pc.InitialMute,
		Autoplay: *pc.Autoplay,
		Stream:   pc.Stream,
	}
}

func ptr[T any](v T) *T { return &v }
