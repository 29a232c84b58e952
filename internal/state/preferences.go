package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/playback"
)

// Preferences are the user's playback settings carried across sessions.
type Preferences struct {
	Volume float64
	Muted  bool
	Rate   float64
	Loop   bool
}

// DefaultPreferences are used before anything was saved.
func DefaultPreferences() Preferences {
	return Preferences{Volume: 1, Rate: 1}
}

// PreferencesFrom captures the settings shown by s.
func PreferencesFrom(s playback.Snapshot) Preferences {
	return Preferences{
		Volume: s.Volume,
		Muted:  s.IsMuted,
		Rate:   s.Rate,
		Loop:   s.IsLooping,
	}
}

// Apply overrides the initial settings of opts.
func (p Preferences) Apply(opts engine.Options) engine.Options {
	vol := engine.ClampVolume(p.Volume)
	rate := engine.ClampRate(p.Rate)
	opts.Volume = &vol
	opts.Rate = &rate
	opts.Mute = p.Muted
	opts.Loop = p.Loop
	return opts
}

func getPreferences(db *sql.DB) (*Preferences, error) {
	var p Preferences
	row := db.QueryRow(`SELECT volume, muted, rate, loop FROM preferences WHERE id = 1`)
	err := row.Scan(&p.Volume, &p.Muted, &p.Rate, &p.Loop)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved preferences is not an error
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func savePreferences(db *sql.DB, p Preferences) error {
	_, err := db.Exec(`
		INSERT INTO preferences (id, volume, muted, rate, loop, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			rate = excluded.rate,
			loop = excluded.loop,
			updated_at = excluded.updated_at
	`, p.Volume, p.Muted, p.Rate, p.Loop, time.Now().Unix())
	return err
}
