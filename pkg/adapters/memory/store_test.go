package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
	contract "github.com/aretw0/quiver/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunGraphStoreContract(t, store)
}

func TestMemoryDocument_Contract(t *testing.T) {
	contract.DocumentContractTest(t, memory.NewDocument(nil))
}

func TestMemoryDocument_FlushNotifiesObservers(t *testing.T) {
	ctx := context.Background()
	doc := memory.NewDocument(map[string]any{domain.KeyStates: []domain.StateRecord{}})

	var seen []map[string]any
	doc.Observe(func(_ context.Context, changes map[string]any) {
		seen = append(seen, changes)
	})

	doc.Set(domain.KeyLastStateID, 3)
	v, ok := doc.Get(domain.KeyLastStateID)
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Empty(t, seen, "observers only run on flush")

	require.NoError(t, doc.Flush(ctx))
	require.Len(t, seen, 1)
	assert.Equal(t, map[string]any{domain.KeyLastStateID: 3}, seen[0])

	// Nothing pending: observers are not called again
	require.NoError(t, doc.Flush(ctx))
	assert.Len(t, seen, 1)
	assert.Equal(t, 2, doc.Flushes())
}

func TestMemoryLibrary(t *testing.T) {
	ctx := context.Background()
	seed := &domain.Snapshot{States: []domain.StateRecord{{ID: "0"}}, LastStateID: 0}
	lib := memory.NewLibrary(map[string]*domain.Snapshot{"single": seed})

	got, err := lib.Get(ctx, "single")
	require.NoError(t, err)
	assert.Equal(t, seed, got)

	// Seed is copied
	seed.States[0].ID = "9"
	got, err = lib.Get(ctx, "single")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("0"), got.States[0].ID)

	_, err = lib.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)

	require.NoError(t, lib.Put(ctx, "another", domain.NewSnapshot()))
	names, err := lib.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"another", "single"}, names)
}
