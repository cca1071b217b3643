package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/infrastructure/postgres/generated"
	"github.com/iho/ledger-es/internal/usecase"
)

// DashboardRepository implements usecase.DashboardRepository on the single
// dashboard_views row.
type DashboardRepository struct {
	queries *generated.Queries
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return newDashboardRepository(pool)
}

func newDashboardRepository(pool pgxPool) *DashboardRepository {
	return &DashboardRepository{queries: generated.New(pool)}
}

// Get returns the dashboard, or an empty one before the first event.
func (r *DashboardRepository) Get(ctx context.Context) (*domain.Dashboard, error) {
	row, err := r.queries.GetDashboardView(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Dashboard{}, nil
		}
		return nil, err
	}

	return rowToDashboard(generated.GetDashboardViewForUpdateRow(row)), nil
}

// GetTx returns the dashboard and locks its row until tx ends.
func (r *DashboardRepository) GetTx(ctx context.Context, tx usecase.Transaction) (*domain.Dashboard, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetDashboardViewForUpdate(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Dashboard{}, nil
		}
		return nil, err
	}

	return rowToDashboard(row), nil
}

// Save writes the dashboard if the stored row is exactly one version
// behind, or inserts it for the first projected event.
func (r *DashboardRepository) Save(ctx context.Context, tx usecase.Transaction, d *domain.Dashboard) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	updated, err := queries.UpdateDashboardView(ctx, generated.UpdateDashboardViewParams{
		LedgerCount:       d.LedgerCount,
		LedgerOpenCount:   d.LedgerOpenCount,
		LedgerClosedCount: d.LedgerClosedCount,
		TransactionCount:  d.TransactionCount,
		ReceiptCount:      d.ReceiptCount,
		PaymentCount:      d.PaymentCount,
		NetAmount:         decimalToNumeric(d.NetAmount),
		ReceiptAmount:     decimalToNumeric(d.ReceiptAmount),
		PaymentAmount:     decimalToNumeric(d.PaymentAmount),
		Version:           int64(d.Version),
		LastPosition:      int64(d.LastPosition),
		ModifiedDate:      timeToPgTimestamptz(d.ModifiedDate),
		ExpectedVersion:   int64(d.Version) - 1,
	})
	if err != nil {
		return err
	}
	if updated == 1 {
		return nil
	}

	if d.Version != 1 {
		return domain.ErrProjectionVersionConflict
	}

	inserted, err := queries.InsertDashboardView(ctx, generated.InsertDashboardViewParams{
		LedgerCount:       d.LedgerCount,
		LedgerOpenCount:   d.LedgerOpenCount,
		LedgerClosedCount: d.LedgerClosedCount,
		TransactionCount:  d.TransactionCount,
		ReceiptCount:      d.ReceiptCount,
		PaymentCount:      d.PaymentCount,
		NetAmount:         decimalToNumeric(d.NetAmount),
		ReceiptAmount:     decimalToNumeric(d.ReceiptAmount),
		PaymentAmount:     decimalToNumeric(d.PaymentAmount),
		Version:           int64(d.Version),
		LastPosition:      int64(d.LastPosition),
		ModifiedDate:      timeToPgTimestamptz(d.ModifiedDate),
	})
	if err != nil {
		return err
	}
	if inserted == 0 {
		return domain.ErrProjectionVersionConflict
	}

	return nil
}

func rowToDashboard(row generated.GetDashboardViewForUpdateRow) *domain.Dashboard {
	return &domain.Dashboard{
		LedgerCount:       row.LedgerCount,
		LedgerOpenCount:   row.LedgerOpenCount,
		LedgerClosedCount: row.LedgerClosedCount,
		TransactionCount:  row.TransactionCount,
		ReceiptCount:      row.ReceiptCount,
		PaymentCount:      row.PaymentCount,
		NetAmount:         numericToDecimal(row.NetAmount),
		ReceiptAmount:     numericToDecimal(row.ReceiptAmount),
		PaymentAmount:     numericToDecimal(row.PaymentAmount),
		Version:           uint64(row.Version),
		LastPosition:      uint64(row.LastPosition),
		ModifiedDate:      pgTimestamptzToTime(row.ModifiedDate),
	}
}
