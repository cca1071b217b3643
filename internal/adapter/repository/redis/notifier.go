package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/infrastructure/notifier"
)

// Pub/sub channels. A new ledger is announced to every list subscriber,
// changes to an existing ledger only to that ledger's channel.
const (
	LedgersChannel   = "ledgers"
	DashboardChannel = "dashboard"
)

// LedgerChannel is the channel of one ledger's subscribers.
func LedgerChannel(ledgerID string) string {
	return "ledger:" + ledgerID
}

// ChannelFor returns the channel a notification is published on.
func ChannelFor(n domain.ChangeNotification) (string, error) {
	switch n.Kind {
	case domain.LedgerAdded:
		return LedgersChannel, nil
	case domain.LedgerUpdated:
		return LedgerChannel(n.LedgerID), nil
	case domain.DashboardUpdated:
		return DashboardChannel, nil
	default:
		return "", fmt.Errorf("unknown change kind %q", n.Kind)
	}
}

// Notifier publishes change notifications over Redis pub/sub.
type Notifier struct {
	client *redis.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// Publish implements notifier.Publisher.
func (n *Notifier) Publish(ctx context.Context, change domain.ChangeNotification) error {
	channel, err := ChannelFor(change)
	if err != nil {
		return err
	}

	payload, err := notifier.Encode(change)
	if err != nil {
		return err
	}

	return n.client.Publish(ctx, channel, payload).Err()
}
