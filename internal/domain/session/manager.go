package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/shared/id"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Desktop is the part of the window manager sessions need.
type Desktop interface {
	Snapshot() []window.Placement
	Viewport() window.Viewport
	SetViewport(v window.Viewport) error
	RestoreSnapshot(ctx context.Context, placements []window.Placement) ([]string, error)
}

// Manager handles session persistence
type Manager struct {
	desktop Desktop
	store   storage.Store
	metrics *monitoring.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu           sync.RWMutex
	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a new session manager
func NewManager(desktop Desktop, store storage.Store) *Manager {
	return &Manager{
		desktop: desktop,
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithLogger sets the manager's logger
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Save captures the current layout under a new id.
func (m *Manager) Save(ctx context.Context, name, description string) (*Session, error) {
	return m.save(ctx, id.NewSessionID().String(), name, description)
}

// SaveDefault overwrites the default session with the current layout.
func (m *Manager) SaveDefault(ctx context.Context) (*Session, error) {
	return m.save(ctx, DefaultID, "default", "Auto-saved session")
}

func (m *Manager) save(ctx context.Context, sessionID, name, description string) (*Session, error) {
	now := m.now()
	s := &Session{
		ID:          sessionID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Workspace: Workspace{
			Windows:  m.desktop.Snapshot(),
			Viewport: m.desktop.Viewport(),
		},
	}

	if existing, err := m.Load(ctx, sessionID); err == nil {
		s.CreatedAt = existing.CreatedAt
	}

	if err := storage.PutJSON(ctx, m.store, storage.BucketSessions, s.ID, s); err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordSessionSaved()
	}
	m.logger.Info("Session saved",
		zap.String("session_id", s.ID),
		zap.Int("windows", len(s.Workspace.Windows)))
	return s, nil
}

// Load reads a session from storage.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := storage.GetJSON(ctx, m.store, storage.BucketSessions, sessionID, &s); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("session %s has empty ID field", sessionID)
	}
	return &s, nil
}

// Restore closes every window and reopens the saved layout.
func (m *Manager) Restore(ctx context.Context, sessionID string) (*RestoreResult, error) {
	s, err := m.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.Workspace.Viewport.Validate() == nil {
		if err := m.desktop.SetViewport(s.Workspace.Viewport); err != nil {
			return nil, err
		}
	}

	skipped, err := m.desktop.RestoreSnapshot(ctx, s.Workspace.Windows)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", sessionID, err)
	}

	now := m.now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordSessionRestored()
	}
	m.logger.Info("Session restored",
		zap.String("session_id", sessionID),
		zap.Strings("skipped", skipped))
	return &RestoreResult{Session: s, Skipped: skipped}, nil
}

// List returns saved sessions, most recently updated first.
func (m *Manager) List(ctx context.Context) ([]Metadata, error) {
	sessions, skipped, err := storage.ListJSON[Session](ctx, m.store, storage.BucketSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if skipped > 0 {
		m.logger.Warn("Skipped unreadable sessions", zap.Int("count", skipped))
	}

	out := make([]Metadata, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessions[i].ToMetadata())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, storage.BucketSessions, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Stats returns session manager statistics
func (m *Manager) Stats(ctx context.Context) Stats {
	var total int
	if records, err := m.store.List(ctx, storage.BucketSessions); err == nil {
		total = len(records)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		TotalSessions: total,
		LastSaved:     m.lastSaved,
		LastRestored:  m.lastRestored,
	}
}
