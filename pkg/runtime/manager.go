package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/weft-ui/weft/pkg/persist"
)

// SessionManager tracks live sessions and coordinates detach and resume
// through a persist.SnapshotStore.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	config *SessionConfig
	store  persist.SnapshotStore
	logger *slog.Logger
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithSnapshotStore sets the persistence backend for detached sessions.
// Without one, Detach closes the session outright.
func WithSnapshotStore(store persist.SnapshotStore) ManagerOption {
	return func(m *SessionManager) {
		m.store = store
	}
}

// NewSessionManager creates a session manager.
func NewSessionManager(config *SessionConfig, opts ...ManagerOption) *SessionManager {
	config = config.normalize()
	m := &SessionManager{
		sessions: make(map[string]*Session),
		config:   config,
		logger:   config.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create builds a new session for the app, mounts it, starts its loop, and
// registers it.
func (m *SessionManager) Create(app App) *Session {
	sess := NewSession(nil, m.config)
	sess.component = app(sess)
	sess.Mount()
	sess.Start()

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	if m.config.Metrics != nil {
		m.config.Metrics.RecordSessionCreate()
	}

	m.logger.Info("session created", "session_id", sess.ID)
	return sess
}

// Get returns a live session by ID.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Detach snapshots a session's data to the store and closes it. The session
// can later be revived with Resume under the same ID. Without a store the
// session is simply closed.
func (m *SessionManager) Detach(ctx context.Context, id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("runtime: detach unknown session %q", id)
	}

	if m.store != nil {
		snap := persist.Snapshot{
			SessionID:  sess.ID,
			CreatedAt:  sess.CreatedAt,
			DetachedAt: time.Now(),
			Data:       sess.snapshotData(),
		}
		if err := m.store.Save(ctx, snap); err != nil {
			sess.Close()
			return fmt.Errorf("runtime: snapshot save: %w", err)
		}
		if m.config.Metrics != nil {
			m.config.Metrics.RecordSessionDetach()
		}
	} else if m.config.Metrics != nil {
		m.config.Metrics.RecordSessionDestroy()
	}

	sess.Close()
	m.logger.Info("session detached", "session_id", id)
	return nil
}

// Resume revives a detached session: a fresh session is created for the
// component, the persisted data map is restored, and the ID is carried over
// so the client can keep its reference. Hook cells start from scratch; the
// first render rebuilds them from the restored data.
func (m *SessionManager) Resume(ctx context.Context, id string, app App) (*Session, error) {
	if m.store == nil {
		return nil, fmt.Errorf("runtime: resume requires a snapshot store")
	}

	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("runtime: snapshot load: %w", err)
	}

	sess := NewSession(nil, m.config)
	sess.ID = snap.SessionID
	sess.CreatedAt = snap.CreatedAt
	sess.logger = m.config.Logger.With("session_id", sess.ID)
	sess.restoreData(snap.Data)
	sess.component = app(sess)

	sess.Mount()
	sess.Start()

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("snapshot delete failed", "session_id", id, "error", err)
	}

	if m.config.Metrics != nil {
		m.config.Metrics.RecordSessionResume()
	}

	m.logger.Info("session resumed", "session_id", id)
	return sess, nil
}

// Close removes and closes a session.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	sess.Close()
	if m.config.Metrics != nil {
		m.config.Metrics.RecordSessionDestroy()
	}
}

// CloseAll closes every live session. Used during server shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		if m.config.Metrics != nil {
			m.config.Metrics.RecordSessionDestroy()
		}
	}

	m.logger.Info("all sessions closed", "count", len(sessions))
}
