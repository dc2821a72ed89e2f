package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/internal/config"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/adapters/file"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/adapters/redis"
	"github.com/aretw0/quiver/pkg/adapters/sqlite"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/dsl"
	"github.com/aretw0/quiver/pkg/persistence/middleware"
)

func openTestStack(t *testing.T, cfg *config.Config) *Stack {
	t.Helper()
	st, err := OpenStack(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenStack_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.Config, string)
		check  func(*testing.T, *Stack)
	}{
		{
			name:   "memory",
			mutate: func(c *config.Config, dir string) {},
			check: func(t *testing.T, st *Stack) {
				assert.IsType(t, &memory.Store{}, middleware.Unwrap(st.Store))
			},
		},
		{
			name: "file",
			mutate: func(c *config.Config, dir string) {
				c.Store.Driver = config.StoreFile
				c.Store.Path = dir
			},
			check: func(t *testing.T, st *Stack) {
				assert.IsType(t, &file.Store{}, middleware.Unwrap(st.Store))
			},
		},
		{
			name: "sqlite",
			mutate: func(c *config.Config, dir string) {
				c.Store.Driver = config.StoreSQLite
				c.Store.Path = filepath.Join(dir, "sessions.db")
			},
			check: func(t *testing.T, st *Stack) {
				assert.IsType(t, &sqlite.Store{}, middleware.Unwrap(st.Store))
			},
		},
		{
			name: "redis with lock",
			mutate: func(c *config.Config, dir string) {
				c.Store.Driver = config.StoreRedis
				c.Store.RedisAddr = mr.Addr()
				c.Store.Lock = true
			},
			check: func(t *testing.T, st *Stack) {
				assert.IsType(t, &redis.Store{}, middleware.Unwrap(st.Store))
				assert.NotNil(t, st.Locker)
				assert.NotNil(t, st.Redis)
			},
		},
		{
			name: "library",
			mutate: func(c *config.Config, dir string) {
				c.Library.Dir = dir
			},
			check: func(t *testing.T, st *Stack) {
				assert.NotNil(t, st.Library)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg, t.TempDir())
			require.NoError(t, cfg.Validate())

			st := openTestStack(t, cfg)
			tt.check(t, st)

			// Every store round-trips through the stack.
			ctx := context.Background()
			b := dsl.New()
			b.State(0).Initial()
			snap := b.MustBuild()
			require.NoError(t, st.Store.Save(ctx, "s1", snap))
			loaded, err := st.Store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Len(t, loaded.States, 1)
		})
	}
}

func TestStack_Seed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Library.Dir = t.TempDir()
	st := openTestStack(t, cfg)
	ctx := context.Background()

	// Nothing given: default seed.
	snap, err := st.Seed(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, snap.States, 1)
	assert.Equal(t, domain.ID("0"), snap.States[0].ID)

	// Unknown session falls through to the default seed.
	snap, err = st.Seed(ctx, "fresh", "")
	require.NoError(t, err)
	assert.Len(t, snap.Transitions, 2)

	// Saved session wins.
	b := dsl.New()
	b.State(0).Go(1, "x")
	b.State(1)
	require.NoError(t, st.Store.Save(ctx, "saved", b.MustBuild()))
	snap, err = st.Seed(ctx, "saved", "")
	require.NoError(t, err)
	assert.Len(t, snap.States, 2)

	// Named automaton from the library.
	require.NoError(t, st.Library.Put(ctx, "pair", b.MustBuild()))
	snap, err = st.Seed(ctx, "", "pair")
	require.NoError(t, err)
	require.Len(t, snap.Transitions, 1)
	assert.Equal(t, "x", snap.Transitions[0].Label)

	_, err = st.Seed(ctx, "", "missing")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
}

func TestStack_SharedDocumentRequiresRedis(t *testing.T) {
	st := openTestStack(t, config.DefaultConfig())
	_, err := st.OpenDocument(context.Background(), "shared", nil)
	assert.Error(t, err)
}

func TestStack_SharedDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.StoreRedis
	cfg.Store.RedisAddr = mr.Addr()
	st := openTestStack(t, cfg)
	ctx := context.Background()

	b := dsl.New()
	b.State(0).Final()
	doc, err := st.OpenDocument(ctx, "shared", b.MustBuild())
	require.NoError(t, err)

	editor, err := NewEditor(ctx, cfg, logging.NewNop(), doc)
	require.NoError(t, err)
	assert.Len(t, editor.Snapshot().States, 2, "final marker repaired")

	// The editor's first flush lands in redis; a second reader sees it.
	require.NoError(t, editor.Select("0"))
	require.NotEmpty(t, editor.Perform(ctx, domain.ActionLoop))

	other, err := redis.OpenDocument(ctx, st.Redis, redis.DefaultPrefix, "shared")
	require.NoError(t, err)
	raw, ok := other.Get(domain.KeyTransitions)
	require.True(t, ok)
	assert.NotEmpty(t, raw)
}
