package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
	"github.com/aretw0/quiver/pkg/session"
)

func TestManager_CreateDefaultSeed(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	sess, err := mgr.Create(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	// {source: 0} and {target: 0} are repaired into markers of state 0.
	saved, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	ids := make([]domain.ID, 0, len(saved.States))
	for _, s := range saved.States {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []domain.ID{"0", "0.1", "0.2"}, ids)
	assert.Equal(t, 0, saved.LastStateID)
}

func TestManager_EditsArePersistedAndBroadcast(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	sess, err := mgr.Create(ctx, nil)
	require.NoError(t, err)

	diffs, cancel := sess.Subscribe()
	defer cancel()
	assert.Equal(t, 1, sess.Subscribers())

	muts := sess.Editor.Dispatch(ctx, domain.PointerDown{Pos: domain.Point{X: 300, Y: 200}})
	require.Len(t, muts, 1)
	assert.Equal(t, domain.MutationStateAdded, muts[0].Kind)

	select {
	case diff := <-diffs:
		assert.Equal(t, sess.ID, diff.SessionID)
		require.Len(t, diff.AddedStates, 1)
		assert.Equal(t, domain.ID("1"), diff.AddedStates[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no diff broadcast")
	}

	saved, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.LastStateID)
}

func TestManager_OpenRestoresFromStore(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "stored", &domain.Snapshot{
		States:      []domain.StateRecord{{ID: "0"}, {ID: "4"}},
		Transitions: []domain.TransitionRecord{{Source: "0", Target: "4", Label: "x"}},
		LastStateID: 4,
	}))

	mgr := session.NewManager(store)
	sess, err := mgr.Open(ctx, "stored")
	require.NoError(t, err)
	assert.Equal(t, 4, sess.Editor.Snapshot().LastStateID)

	again, err := mgr.Open(ctx, "stored")
	require.NoError(t, err)
	assert.Same(t, sess, again)

	_, err = mgr.Open(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DeleteClosesSubscribers(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	sess, err := mgr.Create(ctx, nil)
	require.NoError(t, err)
	diffs, _ := sess.Subscribe()

	require.NoError(t, mgr.Delete(ctx, sess.ID))
	_, open := <-diffs
	assert.False(t, open)

	_, err = mgr.Open(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, sess.ID)
}

func TestManager_Library(t *testing.T) {
	ctx := context.Background()
	lib := memory.NewLibrary(map[string]*domain.Snapshot{
		"pair": {
			States:      []domain.StateRecord{{ID: "0"}, {ID: "1"}},
			Transitions: []domain.TransitionRecord{{Source: "0", Target: "1", Label: "a"}},
			LastStateID: 1,
		},
	})
	mgr := session.NewManager(memory.NewStore(), session.WithLibrary(lib))

	sess, err := mgr.CreateFrom(ctx, "pair")
	require.NoError(t, err)
	assert.Len(t, sess.Editor.Snapshot().Transitions, 1)

	_, err = mgr.CreateFrom(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)

	require.NoError(t, mgr.SaveTo(ctx, sess.ID, "copy"))
	names, err := lib.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"copy", "pair"}, names)

	bare := session.NewManager(memory.NewStore())
	_, err = bare.CreateFrom(ctx, "pair")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
}

// countingLocker records lock usage.
type countingLocker struct {
	locks, unlocks atomic.Int32
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.locks.Add(1)
	return func(context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_WithLockSerializes(t *testing.T) {
	locker := &countingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker))
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		overlap atomic.Bool
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, "shared", func(context.Context) error {
				if inside.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(2 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "critical sections overlapped")
	assert.Equal(t, int32(10), locker.locks.Load())
	assert.Equal(t, int32(10), locker.unlocks.Load())
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("unavailable")
}

func TestManager_LockerFailure(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(failingLocker{}))
	called := false
	err := mgr.WithLock(context.Background(), "x", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
