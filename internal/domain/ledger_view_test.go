package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

func TestLedgerView_Apply_RecordsEntries(t *testing.T) {
	r := receipt("L1", "100.00")
	r.EventID = "evt-1"
	p := payment("L1", "40.00")
	p.EventID = "evt-2"

	view := &LedgerView{}
	applyAll(t, view, opened("L1"), r, p)

	if view.LedgerName != "Test" {
		t.Fatalf("expected name Test, got %s", view.LedgerName)
	}
	if !view.Balance.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected balance 60, got %s", view.Balance)
	}
	if len(view.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Entries))
	}
	if view.Entries[0].EntryID != "evt-1" || view.Entries[0].Type != EntryTypeReceipt {
		t.Fatalf("unexpected first entry %+v", view.Entries[0])
	}
	if !view.Entries[1].Amount.Equal(decimal.RequireFromString("-40")) {
		t.Fatalf("expected payment stored negative, got %s", view.Entries[1].Amount)
	}
	if !view.IsOpen() || view.Version != 3 {
		t.Fatalf("expected open view at version 3, got %+v", view)
	}

	sum := decimal.Zero
	for _, e := range view.Entries {
		sum = sum.Add(e.Amount)
	}
	if !sum.Equal(view.Balance) {
		t.Fatalf("entries sum %s does not match balance %s", sum, view.Balance)
	}
}

func TestLedgerView_Apply_RejectsSameAsWriteModel(t *testing.T) {
	view := &LedgerView{}
	applyAll(t, view, opened("L1"), receipt("L1", "5"))

	err := view.Apply(closed("L1"))

	var invalid *eventsourcing.InvalidStateTransitionError
	if !errors.As(err, &invalid) || invalid.Message != MsgCloseWithBalance {
		t.Fatalf("expected has-balance violation, got %v", err)
	}
	if len(view.Entries) != 1 || view.Version != 2 {
		t.Fatalf("view mutated on failure: %+v", view)
	}
}

func TestLedgerView_Summary(t *testing.T) {
	view := &LedgerView{}
	applyAll(t, view, opened("L1"), receipt("L1", "1.50"))

	s := view.Summary()
	if s.LedgerID != "L1" || s.Version != 2 || !s.Balance.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestNewLedgerNotification(t *testing.T) {
	view := &LedgerView{}
	applyAll(t, view, opened("L1"))

	if n := NewLedgerNotification(view, 7); n.Kind != LedgerAdded || n.LedgerID != "L1" || n.Position != 7 {
		t.Fatalf("expected LedgerAdded, got %+v", n)
	}

	applyAll(t, view, receipt("L1", "1"))
	if n := NewLedgerNotification(view, 8); n.Kind != LedgerUpdated {
		t.Fatalf("expected LedgerUpdated, got %s", n.Kind)
	}
}
