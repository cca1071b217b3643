package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

// LedgerQueryUseCase serves reads from the projections.
type LedgerQueryUseCase struct {
	events    EventClient
	ledgers   LedgerViewRepository
	dashboard DashboardRepository
	cursors   ProjectionCursorRepository
	cache     DashboardCache
	logger    zerolog.Logger
}

// NewLedgerQueryUseCase creates a new LedgerQueryUseCase. cache may be nil.
func NewLedgerQueryUseCase(
	events EventClient,
	ledgers LedgerViewRepository,
	dashboard DashboardRepository,
	cursors ProjectionCursorRepository,
	cache DashboardCache,
	logger zerolog.Logger,
) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{
		events:    events,
		ledgers:   ledgers,
		dashboard: dashboard,
		cursors:   cursors,
		cache:     cache,
		logger:    logger.With().Str("component", "ledger_queries").Logger(),
	}
}

// ListLedgersInput represents paging input. Page is zero based.
type ListLedgersInput struct {
	Page     int
	PageSize int
}

// GetLedger returns one ledger with its entries.
func (uc *LedgerQueryUseCase) GetLedger(ctx context.Context, ledgerID string) (*domain.LedgerView, error) {
	if err := domain.ValidateLedgerID(ledgerID); err != nil {
		return nil, err
	}
	return uc.ledgers.Get(ctx, ledgerID)
}

// GetLedgerList returns one page of ledgers in the order they were opened.
func (uc *LedgerQueryUseCase) GetLedgerList(ctx context.Context, input ListLedgersInput) (*domain.LedgerPage, error) {
	if err := domain.ValidatePagination(input.Page, input.PageSize); err != nil {
		return nil, err
	}

	results, err := uc.ledgers.List(ctx, input.PageSize, input.Page*input.PageSize)
	if err != nil {
		return nil, err
	}

	total, err := uc.ledgers.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.LedgerPage{
		Results:  results,
		Page:     input.Page,
		PageSize: input.PageSize,
		Total:    total,
	}, nil
}

// GetDashboard returns the dashboard, from the cache when possible.
func (uc *LedgerQueryUseCase) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warn().Err(err).Msg("dashboard cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	dashboard, err := uc.dashboard.Get(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, dashboard); err != nil {
			uc.logger.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}

	return dashboard, nil
}

// ProjectionStatus returns the committed position of every projection.
func (uc *LedgerQueryUseCase) ProjectionStatus(ctx context.Context) ([]ProjectionCursor, error) {
	return uc.cursors.List(ctx)
}

// ReplayLedger rebuilds a ledger view straight from its stream, bypassing
// the projection. It is the cold path used to check a projected view.
func (uc *LedgerQueryUseCase) ReplayLedger(ctx context.Context, ledgerID string) (*domain.LedgerView, error) {
	if err := domain.ValidateLedgerID(ledgerID); err != nil {
		return nil, err
	}

	stream := uc.events.StreamNameFor(domain.LedgerKind, ledgerID)
	view, _, err := eventsourcing.Replay[domain.LedgerView](ctx, uc.events, stream)
	if errors.Is(err, eventsourcing.ErrStreamNotFound) {
		return nil, domain.ErrLedgerNotFound
	}
	if err != nil {
		return nil, err
	}
	return view, nil
}
