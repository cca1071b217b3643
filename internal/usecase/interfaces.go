package usecase

import (
	"context"
	"time"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

// EventClient is the part of the event log client used by command handlers.
type EventClient interface {
	StreamNameFor(kind, id string) string
	ReadStream(ctx context.Context, stream string) ([]eventsourcing.RecordedEvent, error)
	Append(ctx context.Context, stream string, agg eventsourcing.Aggregate, expectedVersion uint64, event eventsourcing.Event) (eventsourcing.RecordedEvent, error)
}

// LedgerViewRepository defines data access for the ledger projection.
type LedgerViewRepository interface {
	Get(ctx context.Context, ledgerID string) (*domain.LedgerView, error)
	GetTx(ctx context.Context, tx Transaction, ledgerID string) (*domain.LedgerView, error)
	// Save writes view when the stored version is view.Version-1, or inserts
	// it when no row exists. Otherwise domain.ErrProjectionVersionConflict.
	Save(ctx context.Context, tx Transaction, view *domain.LedgerView) error
	List(ctx context.Context, limit, offset int) ([]domain.LedgerSummary, error)
	Count(ctx context.Context) (int64, error)
}

// DashboardRepository defines data access for the dashboard projection.
type DashboardRepository interface {
	// Get returns an empty dashboard when nothing has been projected yet.
	Get(ctx context.Context) (*domain.Dashboard, error)
	GetTx(ctx context.Context, tx Transaction) (*domain.Dashboard, error)
	Save(ctx context.Context, tx Transaction, dashboard *domain.Dashboard) error
}

// ProjectionCursor is the last global position applied by a projection.
type ProjectionCursor struct {
	Name      string
	Position  uint64
	UpdatedAt time.Time
}

// ProjectionCursorRepository stores projection positions.
type ProjectionCursorRepository interface {
	// Get returns ok=false when the projection has never committed.
	Get(ctx context.Context, name string) (position uint64, ok bool, err error)
	Save(ctx context.Context, tx Transaction, name string, position uint64) error
	List(ctx context.Context) ([]ProjectionCursor, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Notifier publishes projection changes.
type Notifier interface {
	Notify(ctx context.Context, n domain.ChangeNotification) error
}

// DashboardCache caches the dashboard between projection updates.
type DashboardCache interface {
	Get(ctx context.Context) (*domain.Dashboard, bool, error)
	Set(ctx context.Context, dashboard *domain.Dashboard) error
	Invalidate(ctx context.Context, position uint64) error
}

// CommandRecorder records command outcomes.
type CommandRecorder interface {
	ObserveCommand(command, outcome string, duration time.Duration)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release deletes the key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}
