package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/persistence/middleware"
	"github.com/aretw0/quiver/pkg/ports"
)

func TestChain_Contract(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := middleware.Chain(memory.NewStore(),
		middleware.WithLogging(logger),
		middleware.WithMetrics(middleware.NewStoreMetrics(nil)),
	)
	ports.RunGraphStoreContract(t, store)
}

func TestUnwrap(t *testing.T) {
	inner := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	wrapped := middleware.Chain(inner,
		middleware.WithLogging(logger),
		middleware.WithMetrics(middleware.NewStoreMetrics(nil)),
	)

	assert.Same(t, inner, middleware.Unwrap(wrapped))
	assert.Same(t, inner, middleware.Unwrap(inner))
}

func TestWithLogging_MissingSessionIsNotAWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := middleware.WithLogging(logger)(memory.NewStore())

	_, err := store.Load(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, buf.String())
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewStoreMetrics(reg)
	store := middleware.WithMetrics(m)(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSnapshot()))
	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	require.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Errors.WithLabelValues("load")))
}
