package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/domain"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

var dashboardFixture = domain.Dashboard{
	LedgerCount:      2,
	LedgerOpenCount:  2,
	TransactionCount: 1,
	ReceiptCount:     1,
	NetAmount:        decimal.RequireFromString("12.50"),
	ReceiptAmount:    decimal.RequireFromString("12.50"),
	Version:          3,
	LastPosition:     3,
}
