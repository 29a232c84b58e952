// Package instance holds the single engine handle shared by every consumer
// running in shared mode.
package instance

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesync/internal/cache"
	"github.com/llehouerou/wavesync/internal/engine"
	"github.com/llehouerou/wavesync/internal/errmsg"
	"github.com/llehouerou/wavesync/internal/observer"
	"github.com/llehouerou/wavesync/internal/playback"
)

// SameSourcePolicy decides what CreateInstance does when asked for the source
// that is already loaded.
type SameSourcePolicy int

const (
	// ReplaceSameSource tears the handle down and builds a new one.
	ReplaceSameSource SameSourcePolicy = iota
	// KeepSameSource returns the current handle untouched, unless it has
	// been unloaded by a failed load.
	KeepSameSource
)

// String returns the policy name used in configuration.
func (p SameSourcePolicy) String() string {
	switch p {
	case ReplaceSameSource:
		return "replace"
	case KeepSameSource:
		return "keep"
	default:
		return "unknown"
	}
}

// ParseSameSourcePolicy parses "replace" or "keep".
func ParseSameSourcePolicy(s string) (SameSourcePolicy, error) {
	switch s {
	case "replace", "":
		return ReplaceSameSource, nil
	case "keep":
		return KeepSameSource, nil
	default:
		return ReplaceSameSource, fmt.Errorf("unknown same-source policy %q", s)
	}
}

// Callback receives broadcast actions.
type Callback func(a playback.Action)

// SubscriptionID identifies a Subscribe registration.
type SubscriptionID = observer.ID

// Manager holds zero or one active handle.
type Manager struct {
	cache  *cache.Cache
	logger zerolog.Logger
	policy SameSourcePolicy

	mu     sync.Mutex
	src    string
	handle engine.Handle
	hooks  []hookRegistration

	subscribers observer.Registry[Callback]
}

type hookRegistration struct {
	event engine.Event
	id    engine.ListenerID
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithSameSourcePolicy sets what happens when the current source is loaded
// again. The default is ReplaceSameSource.
func WithSameSourcePolicy(p SameSourcePolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// NewManager creates an empty manager building handles through c.
func NewManager(c *cache.Cache, opts ...Option) *Manager {
	m := &Manager{
		cache:  c,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateInstance replaces the current handle with one for opts.Src and tells
// every subscriber that loading started. The start-load action carries the
// new handle so subscribers can attach listeners before any event fires.
// When the handle cannot be built, every subscriber receives a load-error
// action without a handle.
func (m *Manager) CreateInstance(opts engine.Options) (engine.Handle, error) {
	m.mu.Lock()
	if m.policy == KeepSameSource && m.handle != nil && m.src == opts.Src &&
		m.handle.State() != engine.Unloaded {
		h := m.handle
		m.mu.Unlock()
		m.logger.Debug().Str("src", opts.Src).Msg("keeping loaded source")
		return h, nil
	}
	m.destroyLocked()

	h, err := m.cache.Create(opts)
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn().Err(err).Str("src", opts.Src).Msg("create shared instance failed")
		m.Broadcast(playback.Action{
			Type:    playback.ActionLoadError,
			Message: errmsg.Format(errmsg.OpCreateAudio, err),
		})
		return nil, err
	}
	for ev, hook := range opts.Hooks() {
		id := h.On(ev, func(error) { hook() })
		m.hooks = append(m.hooks, hookRegistration{event: ev, id: id})
	}
	m.src = opts.Src
	m.handle = h
	m.mu.Unlock()

	m.logger.Debug().Str("src", opts.Src).Msg("instance created")
	m.Broadcast(playback.Action{Type: playback.ActionStartLoad, Handle: h})
	h.Load()
	return h, nil
}

// DestroyInstance detaches the hooks CreateInstance registered, releases the
// handle and broadcasts a reset. Listeners attached by subscribers are theirs
// to remove when they see the reset.
func (m *Manager) DestroyInstance() {
	m.mu.Lock()
	had := m.handle != nil
	m.destroyLocked()
	m.mu.Unlock()

	if had {
		m.Broadcast(playback.Action{Type: playback.ActionReset})
	}
}

func (m *Manager) destroyLocked() {
	if m.handle == nil {
		return
	}
	for _, r := range m.hooks {
		m.handle.Off(r.event, r.id)
	}
	m.hooks = nil
	m.cache.Destroy(m.src)
	m.logger.Debug().Str("src", m.src).Msg("instance destroyed")
	m.src = ""
	m.handle = nil
}

// Handle returns the active handle, or nil.
func (m *Manager) Handle() engine.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// Src returns the active source, or "".
func (m *Manager) Src() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

// Subscribe registers cb for broadcasts.
func (m *Manager) Subscribe(cb Callback) SubscriptionID {
	return m.subscribers.Add(cb)
}

// Unsubscribe removes a registration. Unknown ids are ignored.
func (m *Manager) Unsubscribe(id SubscriptionID) {
	m.subscribers.Remove(id)
}

// Broadcast delivers a to every subscriber synchronously, in subscription
// order. Subscribers added or removed during a broadcast take effect on the
// next one.
func (m *Manager) Broadcast(a playback.Action) {
	for _, cb := range m.subscribers.List() {
		cb(a)
	}
}

// Connections returns the number of subscribers.
func (m *Manager) Connections() int {
	return m.subscribers.Len()
}
