package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/infrastructure/postgres/generated"
	"github.com/iho/ledger-es/internal/usecase"
)

// LedgerViewRepository implements usecase.LedgerViewRepository.
type LedgerViewRepository struct {
	pool    pgxPool
	queries *generated.Queries
}

// NewLedgerViewRepository creates a new LedgerViewRepository.
func NewLedgerViewRepository(pool *pgxpool.Pool) *LedgerViewRepository {
	return newLedgerViewRepository(pool)
}

func newLedgerViewRepository(pool pgxPool) *LedgerViewRepository {
	return &LedgerViewRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Get retrieves a ledger view by ledger id.
func (r *LedgerViewRepository) Get(ctx context.Context, ledgerID string) (*domain.LedgerView, error) {
	row, err := r.queries.GetLedgerView(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}
		return nil, err
	}

	return rowToLedgerView(row)
}

// GetTx retrieves a ledger view with a FOR UPDATE lock.
func (r *LedgerViewRepository) GetTx(ctx context.Context, tx usecase.Transaction, ledgerID string) (*domain.LedgerView, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetLedgerViewForUpdate(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}
		return nil, err
	}

	return rowToLedgerView(row)
}

// Save writes the view if the stored row is exactly one version behind,
// or inserts it when the view is new.
func (r *LedgerViewRepository) Save(ctx context.Context, tx usecase.Transaction, view *domain.LedgerView) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	entries := view.Entries
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode journal entries: %w", err)
	}

	updated, err := queries.UpdateLedgerView(ctx, generated.UpdateLedgerViewParams{
		LedgerName:      view.LedgerName,
		Status:          string(view.Status),
		Balance:         decimalToNumeric(view.Balance),
		Entries:         data,
		Version:         int64(view.Version),
		ModifiedDate:    timeToPgTimestamptz(view.ModifiedDate),
		LedgerID:        view.LedgerID,
		ExpectedVersion: int64(view.Version) - 1,
	})
	if err != nil {
		return err
	}
	if updated == 1 {
		return nil
	}

	if view.Version != 1 {
		return domain.ErrProjectionVersionConflict
	}

	inserted, err := queries.InsertLedgerView(ctx, generated.InsertLedgerViewParams{
		LedgerID:     view.LedgerID,
		LedgerName:   view.LedgerName,
		Status:       string(view.Status),
		Balance:      decimalToNumeric(view.Balance),
		Entries:      data,
		Version:      int64(view.Version),
		ModifiedDate: timeToPgTimestamptz(view.ModifiedDate),
	})
	if err != nil {
		return err
	}
	if inserted == 0 {
		return domain.ErrProjectionVersionConflict
	}

	return nil
}

// List returns ledger summaries in creation order.
func (r *LedgerViewRepository) List(ctx context.Context, limit, offset int) ([]domain.LedgerSummary, error) {
	rows, err := r.queries.ListLedgerViews(ctx, generated.ListLedgerViewsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.LedgerSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LedgerSummary{
			LedgerID:     row.LedgerID,
			LedgerName:   row.LedgerName,
			Status:       domain.LedgerStatus(row.Status),
			Balance:      numericToDecimal(row.Balance),
			Version:      uint64(row.Version),
			ModifiedDate: pgTimestamptzToTime(row.ModifiedDate),
		})
	}

	return out, nil
}

// Count returns the number of ledger views.
func (r *LedgerViewRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountLedgerViews(ctx)
}

func rowToLedgerView(row generated.LedgerView) (*domain.LedgerView, error) {
	var entries []domain.JournalEntry
	if len(row.Entries) > 0 {
		if err := json.Unmarshal(row.Entries, &entries); err != nil {
			return nil, fmt.Errorf("decode journal entries of %s: %w", row.LedgerID, err)
		}
	}

	return &domain.LedgerView{
		LedgerID:     row.LedgerID,
		LedgerName:   row.LedgerName,
		Status:       domain.LedgerStatus(row.Status),
		Balance:      numericToDecimal(row.Balance),
		Entries:      entries,
		Version:      uint64(row.Version),
		ModifiedDate: pgTimestamptzToTime(row.ModifiedDate),
	}, nil
}
