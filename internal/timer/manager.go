package timer

import "sync"

// Manager hands out one engine per user, creating them lazily so each
// restores its own persisted snapshot on first use
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	deps    func(user string) Deps
	engines map[string]*Engine
}

// NewManager creates a manager. deps builds the per-user collaborators
// (snapshot repository, focus recorder, notifier) for a new engine.
func NewManager(cfg Config, deps func(user string) Deps) *Manager {
	return &Manager{
		cfg:     cfg,
		deps:    deps,
		engines: make(map[string]*Engine),
	}
}

// Get returns the engine for a user, creating it on first access
func (m *Manager) Get(user string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[user]; ok {
		return e
	}
	e := New(m.cfg, m.deps(user))
	m.engines[user] = e
	return e
}

// SetConfig changes the durations applied to engines created from now
// on. Existing engines keep their current session untouched.
func (m *Manager) SetConfig(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}
