package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/sqlite"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "quiver.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunGraphStoreContract(t, store)
}

func TestSQLiteStore_Memory(t *testing.T) {
	store, err := sqlite.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	ports.RunGraphStoreContract(t, store)
}

func TestSQLiteStore_Summaries(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	snap := &domain.Snapshot{
		States:      []domain.StateRecord{{ID: "0"}, {ID: "1"}},
		Transitions: []domain.TransitionRecord{{Source: "0", Target: "1", Label: "a"}},
		LastStateID: 1,
	}
	require.NoError(t, store.Save(ctx, "s1", snap))
	require.NoError(t, store.Save(ctx, "s1", snap)) // upsert

	sums, err := store.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, "s1", sums[0].ID)
	assert.Equal(t, 2, sums[0].StateCount)
	assert.Equal(t, 1, sums[0].TransitionCount)
	assert.Equal(t, 1, sums[0].LastStateID)
	assert.NotEmpty(t, sums[0].UpdatedAt)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "quiver.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "kept", domain.NewSnapshot()))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.Load(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, domain.NoStateID, snap.LastStateID)
}
