package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates editing sessions: it creates editors over in-memory
// documents, persists them through a GraphStore and serializes access.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.GraphStore

	mu       sync.Mutex            // Global lock for the maps
	locks    map[string]*lockEntry // Map of active locks
	sessions map[string]*Session   // Live editors

	locker     ports.DistributedLocker // Optional distributed locker
	lockTTL    time.Duration
	publisher  ports.DiffPublisher
	library    ports.AutomatonLibrary
	editorOpts []quiver.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and its editors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPublisher publishes the diffs of every session.
func WithPublisher(pub ports.DiffPublisher) Option {
	return func(m *Manager) {
		m.publisher = pub
	}
}

// WithLibrary enables seeding sessions from named automata.
func WithLibrary(lib ports.AutomatonLibrary) Option {
	return func(m *Manager) {
		m.library = lib
	}
}

// WithEditorOptions appends options applied to every editor the manager creates.
func WithEditorOptions(opts ...quiver.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.GraphStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultSeed is the automaton of a fresh session: state 0, both initial and final.
func DefaultSeed() *domain.Snapshot {
	return &domain.Snapshot{
		States: []domain.StateRecord{{ID: "0"}},
		Transitions: []domain.TransitionRecord{
			{Source: "0"},
			{Target: "0"},
		},
		LastStateID: 0,
	}
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

// Create starts a new session seeded with snap (DefaultSeed when nil).
func (m *Manager) Create(ctx context.Context, snap *domain.Snapshot) (*Session, error) {
	if snap == nil {
		snap = DefaultSeed()
	}
	id := uuid.NewString()

	var sess *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		sess, err = m.start(ctx, id, snap)
		if err != nil {
			return err
		}
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, id, sess.Editor.Snapshot()); err != nil {
			m.forget(id)
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// CreateFrom starts a session seeded with a named automaton of the library.
func (m *Manager) CreateFrom(ctx context.Context, name string) (*Session, error) {
	if m.library == nil {
		return nil, fmt.Errorf("%w: no automaton library configured", domain.ErrAutomatonNotFound)
	}
	snap, err := m.library.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return m.Create(ctx, snap)
}

// SaveTo writes the current graph of a session to the library under name.
func (m *Manager) SaveTo(ctx context.Context, sessionID, name string) error {
	if m.library == nil {
		return errors.New("no automaton library configured")
	}
	sess, err := m.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	return m.library.Put(ctx, name, sess.Editor.Snapshot())
}

// Open returns the live session, restoring it from the store if needed.
// Returns domain.ErrSessionNotFound for unknown ids.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Session, error) {
	if sess := m.live(sessionID); sess != nil {
		return sess, nil
	}

	var sess *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		// Another caller may have restored it while we waited.
		if sess = m.live(sessionID); sess != nil {
			return nil
		}
		snap, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		sess, err = m.start(ctx, sessionID, snap)
		return err
	})
	return sess, err
}

// Delete closes the live session, if any, and removes it from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if sess := m.forget(sessionID); sess != nil {
			sess.close()
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List returns stored and live session ids, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Store returns the underlying graph store.
func (m *Manager) Store() ports.GraphStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) live(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}

func (m *Manager) forget(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	return sess
}

// start builds the editor of a session over a fresh in-memory document.
func (m *Manager) start(ctx context.Context, id string, snap *domain.Snapshot) (*Session, error) {
	sess := &Session{
		ID:      id,
		Created: time.Now(),
		Doc:     memory.NewSnapshotDocument(snap),
		subs:    make(map[int]chan *domain.GraphDiff),
	}

	opts := []quiver.Option{
		quiver.WithLogger(m.logger),
		quiver.WithSessionID(id),
		quiver.WithStore(m.store),
		quiver.WithDiffListener(sess.broadcast),
	}
	if m.publisher != nil {
		opts = append(opts, quiver.WithPublisher(m.publisher))
	}
	opts = append(opts, m.editorOpts...)

	editor, err := quiver.New(ctx, sess.Doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start session %s: %w", id, err)
	}
	sess.Editor = editor

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.logger.Debug("session started", "session_id", id)
	return sess, nil
}
