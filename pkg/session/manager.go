package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/metrics"
	"github.com/marmos91/dittostore/pkg/store"
)

// Close reasons reported to metrics.
const (
	ReasonLogoff   = "logoff"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
)

// Manager tracks open sessions.
//
// Thread safety:
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	metrics metrics.StoreMetrics
	now     func() time.Time
}

// NewManager creates an empty manager. m may be nil.
func NewManager(m metrics.StoreMetrics) *Manager {
	if m == nil {
		m = metrics.NewNoopStoreMetrics()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		metrics:  m,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now()
}

// Open registers s, assigning an ID and logon time when unset.
func (m *Manager) Open(s *Session) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.LogonTime.IsZero() {
		s.LogonTime = now
	}
	s.lastActive = now
	m.sessions[s.ID] = s

	m.metrics.SetActiveSessions(len(m.sessions))
	logger.Debug("Session %s opened (%s, user=%s, database=%s)", s.ID, s.Kind, s.UserDN, s.Database.Name)
	return s
}

// Get returns the open session with the given ID and marks it active.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	now := m.now()
	m.mu.RUnlock()

	if !ok {
		return nil, store.NewNotFoundError("session not found")
	}
	s.Touch(now)
	return s, nil
}

// Close ends a session and discards its pending write.
func (m *Manager) Close(id uuid.UUID) error {
	return m.closeWithReason(id, ReasonLogoff)
}

func (m *Manager) closeWithReason(id uuid.UUID, reason string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return store.NewNotFoundError("session not found")
	}

	s.close()
	m.metrics.SetActiveSessions(count)
	m.metrics.RecordSessionClosed(reason)
	logger.Debug("Session %s closed (%s)", id, reason)
	return nil
}

// CloseIdle closes every session inactive for longer than maxIdle and
// returns how many were closed.
func (m *Manager) CloseIdle(maxIdle time.Duration) int {
	now := m.Now()

	var stale []uuid.UUID
	for _, s := range m.List() {
		if now.Sub(s.LastActive()) > maxIdle {
			stale = append(stale, s.ID)
		}
	}

	closed := 0
	for _, id := range stale {
		if m.closeWithReason(id, ReasonIdle) == nil {
			closed++
		}
	}
	return closed
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	for _, s := range m.List() {
		_ = m.closeWithReason(s.ID, ReasonShutdown)
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns the open sessions ordered by logon time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].LogonTime.Before(result[j].LogonTime) })
	return result
}
