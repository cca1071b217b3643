package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

func opened(id string) *LedgerOpened {
	return &LedgerOpened{LedgerID: id, LedgerName: "Test"}
}

func receipt(id, amount string) *ReceiptJournalled {
	return &ReceiptJournalled{LedgerID: id, Description: "receipt", Amount: decimal.RequireFromString(amount)}
}

func payment(id, amount string) *PaymentJournalled {
	return &PaymentJournalled{LedgerID: id, Description: "payment", Amount: decimal.RequireFromString(amount)}
}

func closed(id string) *LedgerClosed {
	return &LedgerClosed{LedgerID: id}
}

func applyAll(t *testing.T, agg eventsourcing.Aggregate, events ...eventsourcing.Event) {
	t.Helper()
	for _, e := range events {
		if err := agg.Apply(e); err != nil {
			t.Fatalf("apply %T: %v", e, err)
		}
	}
}

func TestLedger_Apply_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		history []eventsourcing.Event
		event   eventsourcing.Event
		wantMsg string
		field   string
	}{
		{
			name:  "open unopened ledger",
			event: opened("L1"),
		},
		{
			name:    "open already opened ledger",
			history: []eventsourcing.Event{opened("L1")},
			event:   opened("L1"),
			wantMsg: MsgAlreadyOpened,
		},
		{
			name:    "reopen closed ledger",
			history: []eventsourcing.Event{opened("L1"), closed("L1")},
			event:   opened("L1"),
			wantMsg: MsgAlreadyOpened,
		},
		{
			name:    "receipt to unopened ledger",
			event:   receipt("L1", "10"),
			wantMsg: MsgReceiptToClosed,
		},
		{
			name:    "receipt to closed ledger",
			history: []eventsourcing.Event{opened("L1"), closed("L1")},
			event:   receipt("L1", "10"),
			wantMsg: MsgReceiptToClosed,
		},
		{
			name:    "payment from closed ledger",
			history: []eventsourcing.Event{opened("L1"), closed("L1")},
			event:   payment("L1", "10"),
			wantMsg: MsgPaymentFromClosed,
		},
		{
			name:    "payment exceeding balance",
			history: []eventsourcing.Event{opened("L1"), receipt("L1", "10.00")},
			event:   payment("L1", "10.01"),
			wantMsg: "Ledger has insufficient balance - $10.00",
			field:   "amount",
		},
		{
			name:    "payment of exact balance",
			history: []eventsourcing.Event{opened("L1"), receipt("L1", "10.00")},
			event:   payment("L1", "10"),
		},
		{
			name:    "close unopened ledger",
			event:   closed("L1"),
			wantMsg: MsgCloseNotOpen,
		},
		{
			name:    "close ledger with balance",
			history: []eventsourcing.Event{opened("L1"), receipt("L1", "0.01")},
			event:   closed("L1"),
			wantMsg: MsgCloseWithBalance,
		},
		{
			name:    "close closed ledger",
			history: []eventsourcing.Event{opened("L1"), closed("L1")},
			event:   closed("L1"),
			wantMsg: MsgCloseNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &Ledger{}
			applyAll(t, ledger, tt.history...)
			before := *ledger

			err := ledger.Apply(tt.event)

			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ledger.Version != before.Version+1 {
					t.Fatalf("expected version %d, got %d", before.Version+1, ledger.Version)
				}
				return
			}

			var invalid *eventsourcing.InvalidStateTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidStateTransitionError, got %v", err)
			}
			if invalid.Message != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, invalid.Message)
			}
			if invalid.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, invalid.Field)
			}
			if invalid.Event != tt.event {
				t.Fatalf("expected offending event to be reported")
			}
			if ledger.Version != before.Version || ledger.Status != before.Status || !ledger.Balance.Equal(before.Balance) {
				t.Fatalf("state mutated on failure: before %+v after %+v", before, *ledger)
			}
		})
	}
}

func TestLedger_Apply_BalanceInvariant(t *testing.T) {
	ledger := &Ledger{}
	applyAll(t, ledger,
		opened("L1"),
		receipt("L1", "100.00"),
		payment("L1", "40.00"),
		receipt("L1", "0.10"),
		receipt("L1", "0.20"),
		payment("L1", "0.30"),
	)

	want := decimal.RequireFromString("60.00")
	if !ledger.Balance.Equal(want) {
		t.Fatalf("expected balance %s, got %s", want, ledger.Balance)
	}
	if ledger.Version != 6 {
		t.Fatalf("expected version 6, got %d", ledger.Version)
	}
	if !ledger.IsOpen() {
		t.Fatalf("expected ledger to be open")
	}
}

func TestLedger_Apply_SetsModifiedDate(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	event := opened("L1")
	event.EventDateTime = at

	ledger := &Ledger{}
	applyAll(t, ledger, event)

	if !ledger.ModifiedDate.Equal(at) {
		t.Fatalf("expected modified date %v, got %v", at, ledger.ModifiedDate)
	}
	if ledger.ID != "L1" {
		t.Fatalf("expected id L1, got %s", ledger.ID)
	}
}

func TestLedger_Apply_Deterministic(t *testing.T) {
	history := []eventsourcing.Event{
		opened("L1"),
		receipt("L1", "12.34"),
		payment("L1", "2.34"),
		payment("L1", "10"),
		closed("L1"),
	}

	first, second := &Ledger{}, &Ledger{}
	applyAll(t, first, history...)
	applyAll(t, second, history...)

	if first.Version != second.Version || first.Status != second.Status || !first.Balance.Equal(second.Balance) {
		t.Fatalf("replay not deterministic: %+v vs %+v", *first, *second)
	}
	if first.Status != LedgerStatusClosed {
		t.Fatalf("expected closed ledger, got %s", first.Status)
	}
}

func TestLedger_Apply_UnsupportedEvent(t *testing.T) {
	err := (&Ledger{}).Apply(&unknownEvent{})
	if !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("expected ErrUnsupportedEvent, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknownEvent") {
		t.Fatalf("expected type in error, got %v", err)
	}
}

type unknownEvent struct {
	eventsourcing.Metadata
}

func (*unknownEvent) AggregateID() string { return "" }
