package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStoreReturnsStoredResponse(t *testing.T) {
	client, _ := newTestRedisClient(t)
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "idempotency:key", `{"status":201}`, time.Minute).Err())

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `{"status":201}`, string(resp))
}

func TestIdempotencyStoreClaimSetsMarkerWithTTL(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, resp)

	val, err := mr.Get("idempotency:pending")
	require.NoError(t, err)
	assert.Equal(t, ProcessingMarker, val)
	assert.Equal(t, time.Minute, mr.TTL("idempotency:pending"))

	mr.FastForward(2 * time.Minute)
	exists, _, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists, "expired claim can be taken again")
}

func TestIdempotencyStoreSecondClaimSeesMarker(t *testing.T) {
	client, _ := newTestRedisClient(t)
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	require.False(t, exists)

	exists, resp, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, ProcessingMarker, string(resp))
}

func TestIdempotencyStoreUpdate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewIdempotencyStore(client, WithKeyPrefix("idem:"))
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "complete", []byte("done"), time.Minute))

	val, err := mr.Get("idem:complete")
	require.NoError(t, err)
	assert.Equal(t, "done", val)
}

func TestIdempotencyStoreRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k"))
	assert.False(t, mr.Exists("idempotency:k"))

	exists, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists, "released key should be claimable")
}

func TestIdempotencyStoreReleaseKeepsFinishedResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "k", []byte("final"), time.Minute))
	require.NoError(t, store.Release(ctx, "k"))

	val, err := mr.Get("idempotency:k")
	require.NoError(t, err)
	assert.Equal(t, "final", val)
}
