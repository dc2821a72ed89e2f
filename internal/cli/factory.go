package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/config"
	"github.com/aretw0/quiver/pkg/adapters/file"
	"github.com/aretw0/quiver/pkg/adapters/loam"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/adapters/nats"
	"github.com/aretw0/quiver/pkg/adapters/redis"
	"github.com/aretw0/quiver/pkg/adapters/sqlite"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/persistence/middleware"
	"github.com/aretw0/quiver/pkg/ports"
	"github.com/aretw0/quiver/pkg/session"
)

// Stack is the set of adapters selected by a configuration.
// Close releases every backend it opened.
type Stack struct {
	Store     ports.GraphStore
	Locker    ports.DistributedLocker
	Publisher ports.DiffPublisher
	Library   ports.AutomatonLibrary
	Redis     *backend.Client

	closers []io.Closer
}

// OpenStack wires the adapters named by cfg. The store is always wrapped
// with operation logging, then with mws. The automaton library is optional:
// a library directory that cannot be opened is logged and skipped.
func OpenStack(cfg *config.Config, logger *slog.Logger, mws ...middleware.Middleware) (*Stack, error) {
	st := &Stack{}

	switch cfg.Store.Driver {
	case config.StoreMemory, "":
		st.Store = memory.NewStore()
	case config.StoreFile:
		st.Store = file.New(cfg.Store.Path)
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st.Store = db
		st.closers = append(st.closers, db)
	case config.StoreRedis:
		rs := redis.New(cfg.Store.RedisAddr, "", 0,
			redis.WithPrefix(cfg.Store.RedisPrefix),
			redis.WithTTL(cfg.TTL()),
		)
		st.Store = rs
		st.Redis = rs.Client()
		st.closers = append(st.closers, rs)
		if cfg.Store.Lock {
			st.Locker = redis.NewLocker(rs.Client(), cfg.Store.RedisPrefix)
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	st.Store = middleware.Chain(st.Store, append([]middleware.Middleware{middleware.WithLogging(logger)}, mws...)...)

	if cfg.NATS.URL != "" {
		pub, err := nats.NewPublisher(cfg.NATS.URL)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		st.Publisher = pub
		st.closers = append(st.closers, pub)
	}

	if cfg.Library.Dir != "" {
		lib, err := loam.Open(cfg.Library.Dir)
		if err != nil {
			logger.Warn("automaton library unavailable", "dir", cfg.Library.Dir, "error", err)
		} else {
			st.Library = lib
		}
	}

	logger.Debug("adapters ready",
		"store", cfg.Store.Driver,
		"locker", st.Locker != nil,
		"nats", st.Publisher != nil,
		"library", st.Library != nil,
	)
	return st, nil
}

// Close releases the opened backends in reverse order.
func (st *Stack) Close() error {
	var errs []error
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	st.closers = nil
	return errors.Join(errs...)
}

// NewManager builds a session manager over the stack with the editor settings of cfg.
func (st *Stack) NewManager(cfg *config.Config, logger *slog.Logger, extra ...quiver.Option) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEditorOptions(append(cfg.EditorOptions(), extra...)...),
	}
	if st.Locker != nil {
		opts = append(opts, session.WithLocker(st.Locker))
	}
	if st.Publisher != nil {
		opts = append(opts, session.WithPublisher(st.Publisher))
	}
	if st.Library != nil {
		opts = append(opts, session.WithLibrary(st.Library))
	}
	return session.NewManager(st.Store, opts...)
}

// Seed resolves the starting graph of a command: a saved session, a named
// automaton from the library, or the default seed, in that order.
func (st *Stack) Seed(ctx context.Context, sessionID, automaton string) (*domain.Snapshot, error) {
	if sessionID != "" {
		snap, err := st.Store.Load(ctx, sessionID)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
	}
	if automaton != "" {
		if st.Library == nil {
			return nil, fmt.Errorf("%w: %s (no library configured)", domain.ErrAutomatonNotFound, automaton)
		}
		return st.Library.Get(ctx, automaton)
	}
	return session.DefaultSeed(), nil
}

// OpenDocument returns the host document for a command. A non-empty name
// mirrors the graph into a shared redis hash; otherwise the document is local.
func (st *Stack) OpenDocument(ctx context.Context, name string, snap *domain.Snapshot) (ports.Document, error) {
	if name == "" {
		return memory.NewSnapshotDocument(snap), nil
	}
	if st.Redis == nil {
		return nil, errors.New("shared documents require the redis store driver")
	}
	doc, err := redis.OpenDocument(ctx, st.Redis, redis.DefaultPrefix, name)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Get(domain.KeyStates); !ok && snap != nil {
		doc.Set(domain.KeyStates, snap.States)
		doc.Set(domain.KeyTransitions, snap.Transitions)
		doc.Set(domain.KeyLastStateID, snap.LastStateID)
	}
	return doc, nil
}

// NewEditor creates an editor with the settings of cfg over doc.
func NewEditor(ctx context.Context, cfg *config.Config, logger *slog.Logger, doc ports.Document, extra ...quiver.Option) (*quiver.Editor, error) {
	opts := append([]quiver.Option{quiver.WithLogger(logger)}, cfg.EditorOptions()...)
	opts = append(opts, extra...)
	return quiver.New(ctx, doc, opts...)
}
