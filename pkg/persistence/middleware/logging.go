package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

type loggingStore struct {
	next   ports.GraphStore
	logger *slog.Logger
}

// WithLogging logs every store operation at debug level and failures at warn.
// A missing session is not a failure.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next ports.GraphStore) ports.GraphStore {
		return &loggingStore{next: next, logger: logger}
	}
}

func (s *loggingStore) Unwrap() ports.GraphStore { return s.next }

func (s *loggingStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	err := s.next.Save(ctx, sessionID, snap)
	if snap == nil {
		s.log("save", sessionID, err)
		return err
	}
	s.log("save", sessionID, err, "states", len(snap.States), "transitions", len(snap.Transitions))
	return err
}

func (s *loggingStore) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	snap, err := s.next.Load(ctx, sessionID)
	s.log("load", sessionID, err)
	return snap, err
}

func (s *loggingStore) Delete(ctx context.Context, sessionID string) error {
	err := s.next.Delete(ctx, sessionID)
	s.log("delete", sessionID, err)
	return err
}

func (s *loggingStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.next.List(ctx)
	s.log("list", "", err, "count", len(ids))
	return ids, err
}

func (s *loggingStore) log(op, sessionID string, err error, attrs ...any) {
	attrs = append([]any{"op", op}, attrs...)
	if sessionID != "" {
		attrs = append(attrs, "session_id", sessionID)
	}
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn("store operation failed", append(attrs, "error", err)...)
		return
	}
	s.logger.Debug("store operation", attrs...)
}
