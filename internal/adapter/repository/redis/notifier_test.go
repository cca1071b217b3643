package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/infrastructure/notifier"
)

func TestChannelFor(t *testing.T) {
	tests := []struct {
		kind    domain.ChangeKind
		want    string
		wantErr bool
	}{
		{kind: domain.LedgerAdded, want: LedgersChannel},
		{kind: domain.LedgerUpdated, want: "ledger:l1"},
		{kind: domain.DashboardUpdated, want: DashboardChannel},
		{kind: "Other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := ChannelFor(domain.ChangeNotification{Kind: tt.kind, LedgerID: "l1"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNotifierPublishesToLedgerChannel(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, LedgerChannel("l1"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	view := &domain.LedgerView{LedgerID: "l1", LedgerName: "Main", Status: domain.LedgerStatusOpen, Version: 2}
	if err := NewNotifier(client).Publish(ctx, domain.NewLedgerNotification(view, 7)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	var got notifier.Message
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if got.Kind != domain.LedgerUpdated || got.Position != 7 || got.Ledger == nil || got.Ledger.LedgerName != "Main" {
		t.Fatalf("unexpected message %+v", got)
	}
}
