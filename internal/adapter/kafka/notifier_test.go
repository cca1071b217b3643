package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/infrastructure/notifier"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestNotifierPublishLedgerUpdate(t *testing.T) {
	producer := &fakeProducer{}
	n := NewNotifier(producer, "ledger-changes")

	view := &domain.LedgerView{LedgerID: "ledger-1", LedgerName: "Main", Status: domain.LedgerStatusOpen}
	err := n.Publish(context.Background(), domain.ChangeNotification{
		Kind:     domain.LedgerUpdated,
		LedgerID: "ledger-1",
		Position: 7,
		Ledger:   view,
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "ledger-changes", rec.Topic)
	assert.Equal(t, "ledger-1", string(rec.Key))
	assert.Equal(t, "kind", rec.Headers[0].Key)
	assert.Equal(t, string(domain.LedgerUpdated), string(rec.Headers[0].Value))

	var msg notifier.Message
	require.NoError(t, json.Unmarshal(rec.Value, &msg))
	assert.Equal(t, uint64(7), msg.Position)
	require.NotNil(t, msg.Ledger)
	assert.Equal(t, "Main", msg.Ledger.LedgerName)
}

func TestNotifierDashboardKey(t *testing.T) {
	producer := &fakeProducer{}
	n := NewNotifier(producer, "ledger-changes")

	err := n.Publish(context.Background(), domain.ChangeNotification{
		Kind:      domain.DashboardUpdated,
		Position:  3,
		Dashboard: &domain.Dashboard{LedgerCount: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, dashboardKey, string(producer.records[0].Key))
}

func TestNotifierProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	n := NewNotifier(producer, "ledger-changes")

	err := n.Publish(context.Background(), domain.ChangeNotification{
		Kind:     domain.LedgerAdded,
		LedgerID: "ledger-1",
		Ledger:   &domain.LedgerView{LedgerID: "ledger-1"},
	})
	assert.EqualError(t, err, "broker down")
}
