package domain

// ChangeKind classifies a projection change for subscribers.
type ChangeKind string

const (
	// LedgerAdded asks subscribers to refresh the whole ledger list.
	LedgerAdded ChangeKind = "LedgerAdded"
	// LedgerUpdated is a delta for the subscribers of one ledger.
	LedgerUpdated ChangeKind = "LedgerUpdated"
	// DashboardUpdated carries the new dashboard.
	DashboardUpdated ChangeKind = "DashboardUpdated"
)

// ChangeNotification is emitted after a projection update is committed.
type ChangeNotification struct {
	Kind      ChangeKind
	LedgerID  string
	Ledger    *LedgerView
	Dashboard *Dashboard
	Position  uint64
}

// NewLedgerNotification classifies a ledger view change: the first version
// of a view is an addition, later versions are updates.
func NewLedgerNotification(view *LedgerView, position uint64) ChangeNotification {
	kind := LedgerUpdated
	if view.Version == 1 {
		kind = LedgerAdded
	}
	return ChangeNotification{
		Kind:     kind,
		LedgerID: view.LedgerID,
		Ledger:   view,
		Position: position,
	}
}

// NewDashboardNotification wraps a dashboard change.
func NewDashboardNotification(d *Dashboard, position uint64) ChangeNotification {
	return ChangeNotification{
		Kind:      DashboardUpdated,
		Dashboard: d,
		Position:  position,
	}
}
