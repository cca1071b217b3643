// Package kafka publishes projection change notifications to a Kafka topic.
package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/infrastructure/notifier"
)

// Dashboard notifications share one key so they stay ordered on a single
// partition.
const dashboardKey = "dashboard"

// Producer is the subset of *kgo.Client the notifier uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Notifier publishes change notifications as JSON records keyed by ledger id.
type Notifier struct {
	producer Producer
	topic    string
}

// NewNotifier creates a new Notifier.
func NewNotifier(producer Producer, topic string) *Notifier {
	return &Notifier{producer: producer, topic: topic}
}

// Publish implements notifier.Publisher.
func (n *Notifier) Publish(ctx context.Context, change domain.ChangeNotification) error {
	value, err := notifier.Encode(change)
	if err != nil {
		return err
	}

	key := change.LedgerID
	if change.Kind == domain.DashboardUpdated || key == "" {
		key = dashboardKey
	}

	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(change.Kind)},
		},
	}

	return n.producer.ProduceSync(ctx, record).FirstErr()
}
