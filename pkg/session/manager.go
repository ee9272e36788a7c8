package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/ports"
	"github.com/google/uuid"
)

// Workspace is one live painting session.
type Workspace struct {
	ID        string
	Studio    *landsketch.Studio
	Store     ports.KVStore
	CreatedAt time.Time
}

// Factory builds the Studio of a new session around its scoped store.
type Factory func(sessionID string, store ports.KVStore) (*landsketch.Studio, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.KVStore
	factory Factory

	mu         sync.Mutex            // Global lock for the maps
	locks      map[string]*lockEntry // Map of active locks
	workspaces map[string]*Workspace

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithFactory sets how studios are built for new sessions.
func WithFactory(f Factory) Option {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager whose sessions share store.
func NewManager(store ports.KVStore, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		locks:      make(map[string]*lockEntry),
		workspaces: make(map[string]*Workspace),
		logger:     logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.factory == nil {
		m.factory = func(_ string, store ports.KVStore) (*landsketch.Studio, error) {
			return landsketch.New(landsketch.WithStore(store))
		}
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) lookup(sessionID string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.workspaces[sessionID]
	return ws, ok
}

// Create starts a session with a fresh random ID.
func (m *Manager) Create(ctx context.Context) (*Workspace, error) {
	return m.Open(ctx, uuid.NewString())
}

// Open returns the session, creating and mounting it if needed.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Workspace, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}

	var ws *Workspace
	err := m.withEntry(sessionID, func() error {
		if existing, ok := m.lookup(sessionID); ok {
			ws = existing
			return nil
		}

		store := Scope(m.store, sessionID)
		studio, err := m.factory(sessionID, store)
		if err != nil {
			return fmt.Errorf("failed to create studio: %w", err)
		}
		studio.Mount()

		ws = &Workspace{ID: sessionID, Studio: studio, Store: store, CreatedAt: time.Now()}
		m.mu.Lock()
		m.workspaces[sessionID] = ws
		m.mu.Unlock()

		m.logger.Info("session opened", "session_id", sessionID)
		return nil
	})
	return ws, err
}

// Get returns a live session or domain.ErrSessionNotFound.
func (m *Manager) Get(sessionID string) (*Workspace, error) {
	ws, ok := m.lookup(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return ws, nil
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context, *Workspace) error) error {
	return m.withEntry(sessionID, func() error {
		ws, ok := m.lookup(sessionID)
		if !ok {
			return domain.ErrSessionNotFound
		}
		return fn(ctx, ws)
	})
}

func (m *Manager) withEntry(sessionID string, fn func() error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn()
}

// Close ends the session: its raster is discarded and its keys deleted.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.withEntry(sessionID, func() error {
		m.mu.Lock()
		ws, ok := m.workspaces[sessionID]
		delete(m.workspaces, sessionID)
		m.mu.Unlock()

		if !ok {
			return domain.ErrSessionNotFound
		}

		ws.Studio.Close()
		if err := Purge(ctx, m.store, sessionID); err != nil {
			return fmt.Errorf("failed to purge session %s: %w", sessionID, err)
		}
		m.logger.Info("session closed", "session_id", sessionID)
		return nil
	})
}

// CloseAll ends every live session.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, id := range m.List() {
		if err := m.Close(ctx, id); err != nil {
			m.logger.Warn("failed to close session", "session_id", id, "err", err)
		}
	}
}

// List returns the IDs of live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.workspaces))
	for id := range m.workspaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the shared, unscoped store.
func (m *Manager) Store() ports.KVStore {
	return m.store
}
