package thinkmode

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultSessionTTL is how long an idle session survives.
	DefaultSessionTTL = 30 * time.Minute

	maxCleanupInterval = 5 * time.Minute
)

type entry struct {
	mu      sync.Mutex // serializes steps for one key
	session *Session
	removed atomic.Bool
}

// Manager is the session arena. Steps for one key run one at a time; steps
// for different keys run concurrently.
type Manager struct {
	sessions map[SessionKey]*entry
	mu       sync.Mutex
	ttl      time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager and starts idle-session cleanup.
// Call Stop to end the cleanup goroutine.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	m := &Manager{
		sessions: make(map[SessionKey]*entry),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Stop ends background cleanup. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Create starts a fresh session for key, replacing any existing one.
func (m *Manager) Create(key SessionKey) *Session {
	s := NewSession(key)
	e := &entry{session: s}

	m.mu.Lock()
	if old, ok := m.sessions[key]; ok {
		old.removed.Store(true)
	}
	m.sessions[key] = e
	m.mu.Unlock()

	return s.Clone()
}

// Update runs fn with exclusive access to the session for key. Changes made
// by fn are kept even when fn returns an error. Sessions that end in a
// terminal state are removed.
func (m *Manager) Update(key SessionKey, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[key]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Replaced or expired while we waited for the lock.
	if e.removed.Load() {
		return nil, ErrSessionNotFound
	}

	err := fn(e.session)
	e.session.UpdatedAt = time.Now()
	snapshot := e.session.Clone()

	if e.session.State.Terminal() {
		m.remove(key, e)
	}
	return snapshot, err
}

// Get returns a snapshot of the session for key.
func (m *Manager) Get(key SessionKey) (*Session, bool) {
	m.mu.Lock()
	e, ok := m.sessions[key]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed.Load() {
		return nil, false
	}
	return e.session.Clone(), true
}

// Delete drops the session for key.
func (m *Manager) Delete(key SessionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[key]; ok {
		e.removed.Store(true)
		delete(m.sessions, key)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Stats returns session counts by state. Busy sessions are counted as
// "busy" rather than waiting on their lock.
func (m *Manager) Stats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make(map[State]int)
	busy := 0
	for _, e := range m.sessions {
		if !e.mu.TryLock() {
			busy++
			continue
		}
		states[e.session.State]++
		e.mu.Unlock()
	}

	return map[string]any{
		"total_sessions": len(m.sessions),
		"by_state":       states,
		"busy":           busy,
	}
}

// Sweep removes sessions idle since before now-ttl and returns how many were
// removed. Sessions with a step in progress are never swept.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if now.Sub(e.session.UpdatedAt) > m.ttl {
			e.removed.Store(true)
			delete(m.sessions, key)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (m *Manager) remove(key SessionKey, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.removed.Store(true)
	if m.sessions[key] == e {
		delete(m.sessions, key)
	}
}

func (m *Manager) cleanup() {
	interval := m.ttl
	if interval > maxCleanupInterval {
		interval = maxCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(time.Now())
		case <-m.stopCh:
			return
		}
	}
}
