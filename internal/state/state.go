// Package state persists user preferences in a small SQLite database.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/wavesync/internal/errmsg"
)

const (
	appName      = "wavesync"
	dbFileName   = "wavesync.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	logger    zerolog.Logger
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Preferences
}

// Open opens the database in the XDG data directory.
func Open(logger zerolog.Logger) (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath, logger)
}

// OpenPath opens or creates the database at path.
func OpenPath(path string, logger zerolog.Logger) (*Manager, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, logger: logger}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	// Flush pending state
	if pending != nil {
		m.save(*pending)
	}

	return m.db.Close()
}

func (m *Manager) GetPreferences() (*Preferences, error) {
	return getPreferences(m.db)
}

// SavePreferences stores p after saveDebounce. A newer call within the
// window replaces it.
func (m *Manager) SavePreferences(p Preferences) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &p

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			m.save(*pending)
		}
	})
}

func (m *Manager) save(p Preferences) {
	if err := savePreferences(m.db, p); err != nil {
		m.logger.Warn().Msg(errmsg.Format(errmsg.OpPrefsSave, err))
	}
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
