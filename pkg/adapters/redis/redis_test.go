package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/redis"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
	contract "github.com/aretw0/quiver/pkg/ports/tests"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	store := redis.NewFromClient(client)
	ports.RunGraphStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()
	store := redis.NewFromClient(client, redis.WithTTL(time.Hour), redis.WithPrefix("test:"))

	require.NoError(t, store.Save(ctx, "s1", domain.NewSnapshot()))
	assert.True(t, mr.Exists("test:s1"))
	assert.Equal(t, time.Hour, mr.TTL("test:s1"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:lock:resource1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := setup(t)
	locker1 := redis.NewLocker(client, "test:lock:")
	locker2 := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))
	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestRedisLocker_UnlockAfterExpiry(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	// Another holder takes the key after expiry; our unlock must not remove it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:k", "someone-else"))
	require.NoError(t, unlock(ctx))

	v, err := mr.Get("test:lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestRedisDocument_Contract(t *testing.T) {
	_, client := setup(t)
	doc, err := redis.OpenDocument(context.Background(), client, "test:", "contract")
	require.NoError(t, err)
	contract.DocumentContractTest(t, doc)
}

func TestRedisDocument_Persists(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	doc, err := redis.OpenDocument(ctx, client, "test:", "shared")
	require.NoError(t, err)

	sub := client.Subscribe(ctx, doc.Channel())
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	doc.Set(domain.KeyTransitions, []domain.TransitionRecord{{Source: "0", Target: "1", Label: "a"}})
	doc.Set(domain.KeyLastStateID, 1)
	assert.False(t, mr.Exists("test:doc:shared"), "nothing is written before Flush")
	require.NoError(t, doc.Flush(ctx))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, domain.KeyTransitions)

	// A second replica sees decoded JSON values
	other, err := redis.OpenDocument(ctx, client, "test:", "shared")
	require.NoError(t, err)
	v, ok := other.Get(domain.KeyLastStateID)
	require.True(t, ok)
	assert.Equal(t, float64(1), v)

	recs, err := contract.TransitionRecords(mustGet(t, other, domain.KeyTransitions))
	require.NoError(t, err)
	assert.Equal(t, []domain.TransitionRecord{{Source: "0", Target: "1", Label: "a"}}, recs)
}

func mustGet(t *testing.T, doc ports.Document, key string) any {
	t.Helper()
	v, ok := doc.Get(key)
	require.True(t, ok, "missing %s", key)
	return v
}
