package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/ledger-es/internal/domain"
)

const (
	dashboardCacheKey = "cache:dashboard"
	// dashboardFloorKey holds the newest projected position seen by
	// Invalidate. Snapshots older than it are never cached.
	dashboardFloorKey = "cache:dashboard:floor"
)

// setDashboardScript stores ARGV[1] unless ARGV[2] is below the floor.
var setDashboardScript = redis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
if tonumber(ARGV[2]) < floor then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// invalidateDashboardScript raises the floor to ARGV[1] and drops the entry.
var invalidateDashboardScript = redis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
if tonumber(ARGV[1]) > floor then
	redis.call('SET', KEYS[2], ARGV[1])
end
return redis.call('DEL', KEYS[1])
`)

// DashboardCache implements usecase.DashboardCache using Redis.
type DashboardCache struct {
	client   *redis.Client
	key      string
	floorKey string
	ttl      time.Duration
}

// NewDashboardCache creates a new DashboardCache. Entries expire after ttl
// even if no invalidation arrives.
func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{
		client:   client,
		key:      dashboardCacheKey,
		floorKey: dashboardFloorKey,
		ttl:      ttl,
	}
}

// Get returns the cached dashboard; ok is false on a miss.
func (c *DashboardCache) Get(ctx context.Context) (*domain.Dashboard, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var d domain.Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		// Unreadable entries are treated as a miss and overwritten.
		return nil, false, nil
	}
	return &d, true, nil
}

// Set stores the dashboard unless a newer one has already been projected.
func (c *DashboardCache) Set(ctx context.Context, dashboard *domain.Dashboard) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	keys := []string{c.key, c.floorKey}
	return setDashboardScript.Run(ctx, c.client, keys, data, dashboard.LastPosition, c.ttl.Milliseconds()).Err()
}

// Invalidate removes the cached dashboard and records position as the
// oldest snapshot Set may store from now on.
func (c *DashboardCache) Invalidate(ctx context.Context, position uint64) error {
	keys := []string{c.key, c.floorKey}
	return invalidateDashboardScript.Run(ctx, c.client, keys, position).Err()
}
