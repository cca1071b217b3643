package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessingMarker is stored under a key while its first request runs.
const ProcessingMarker = "processing"

const defaultIdempotencyPrefix = "idempotency:"

// claimScript returns the stored value, or stores ARGV[1] and returns nil.
var claimScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then
	return v
end
local ttl = tonumber(ARGV[2])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return false
`)

// releaseScript deletes the key only while it still holds the marker, so a
// finished response is never dropped.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// IdempotencyOption configures IdempotencyStore.
type IdempotencyOption func(*IdempotencyStore)

// WithKeyPrefix replaces the default "idempotency:" key prefix.
func WithKeyPrefix(prefix string) IdempotencyOption {
	return func(s *IdempotencyStore) { s.prefix = prefix }
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, opts ...IdempotencyOption) *IdempotencyStore {
	s := &IdempotencyStore{
		client: client,
		prefix: defaultIdempotencyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAndSet atomically claims key. When the key is already taken it
// returns the stored value, which is ProcessingMarker while the first
// request has not finished.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := []byte(ProcessingMarker)
	if response != nil {
		value = response
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.prefix + key}, value, ttl.Milliseconds()).Text()
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, []byte(existing), nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release frees a key that is still being processed so the request can be
// retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, s.client, []string{s.prefix + key}, ProcessingMarker).Err()
}
