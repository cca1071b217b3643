package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+s.Addr()+"/2")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 2, client.Options().DB)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewClientErrors(t *testing.T) {
	down := miniredis.RunT(t)
	downAddr := down.Addr()
	down.Close()

	cases := []struct {
		name string
		url  string
		want string
	}{
		{"invalid url", "://bad-url", "failed to parse redis URL"},
		{"server down", "redis://" + downAddr, "failed to ping redis"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tc.url, WithDialTimeout(200*time.Millisecond))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewClientOptions(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+s.Addr(),
		WithClientName("ledger-es"),
		WithPoolSize(3),
		WithDialTimeout(2*time.Second),
		WithPoolSize(0),
	)
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "ledger-es", opts.ClientName)
	assert.Equal(t, 3, opts.PoolSize, "a zero pool size keeps the earlier value")
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}
