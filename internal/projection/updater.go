package projection

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
	"github.com/iho/ledger-es/internal/usecase"
)

// Updater folds events into one read model inside the engine's transaction.
type Updater interface {
	Name() string
	Handles(event eventsourcing.Event) bool
	// Apply returns the change to announce once the transaction commits, or
	// nil when the event was already applied.
	Apply(ctx context.Context, tx usecase.Transaction, rec eventsourcing.RecordedEvent) (*domain.ChangeNotification, error)
}

// LedgerUpdater maintains one LedgerView per ledger stream.
type LedgerUpdater struct {
	repo   usecase.LedgerViewRepository
	logger zerolog.Logger
}

// NewLedgerUpdater creates a LedgerUpdater.
func NewLedgerUpdater(repo usecase.LedgerViewRepository, logger zerolog.Logger) *LedgerUpdater {
	return &LedgerUpdater{repo: repo, logger: logger}
}

// Name implements Updater.
func (u *LedgerUpdater) Name() string { return "ledger" }

// Handles implements Updater.
func (u *LedgerUpdater) Handles(event eventsourcing.Event) bool {
	_, ok := event.(domain.LedgerEvent)
	return ok
}

// Apply implements Updater. An event whose stream revision is already
// covered by the stored view version is skipped.
func (u *LedgerUpdater) Apply(ctx context.Context, tx usecase.Transaction, rec eventsourcing.RecordedEvent) (*domain.ChangeNotification, error) {
	view, err := u.repo.GetTx(ctx, tx, rec.Event.AggregateID())
	if errors.Is(err, domain.ErrLedgerNotFound) {
		view = &domain.LedgerView{}
	} else if err != nil {
		return nil, err
	}

	if rec.StreamRevision < view.Version {
		u.logger.Debug().
			Str("ledger_id", view.LedgerID).
			Uint64("revision", rec.StreamRevision).
			Uint64("version", view.Version).
			Msg("ledger view already has event")
		return nil, nil
	}

	if err := view.Apply(rec.Event); err != nil {
		return nil, err
	}

	if err := u.repo.Save(ctx, tx, view); err != nil {
		return nil, err
	}

	n := domain.NewLedgerNotification(view, rec.Position)
	return &n, nil
}

// DashboardUpdater maintains the single dashboard row.
type DashboardUpdater struct {
	repo   usecase.DashboardRepository
	logger zerolog.Logger
}

// NewDashboardUpdater creates a DashboardUpdater.
func NewDashboardUpdater(repo usecase.DashboardRepository, logger zerolog.Logger) *DashboardUpdater {
	return &DashboardUpdater{repo: repo, logger: logger}
}

// Name implements Updater.
func (u *DashboardUpdater) Name() string { return "dashboard" }

// Handles implements Updater.
func (u *DashboardUpdater) Handles(event eventsourcing.Event) bool {
	_, ok := event.(domain.LedgerEvent)
	return ok
}

// Apply implements Updater. The dashboard spans every stream, so it tracks
// the global position of the last event it absorbed.
func (u *DashboardUpdater) Apply(ctx context.Context, tx usecase.Transaction, rec eventsourcing.RecordedEvent) (*domain.ChangeNotification, error) {
	dashboard, err := u.repo.GetTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	if rec.Position <= dashboard.LastPosition {
		u.logger.Debug().
			Uint64("position", rec.Position).
			Uint64("last_position", dashboard.LastPosition).
			Msg("dashboard already has event")
		return nil, nil
	}

	if err := dashboard.Apply(rec.Event); err != nil {
		return nil, err
	}
	dashboard.LastPosition = rec.Position

	if err := u.repo.Save(ctx, tx, dashboard); err != nil {
		return nil, err
	}

	n := domain.NewDashboardNotification(dashboard, rec.Position)
	return &n, nil
}
