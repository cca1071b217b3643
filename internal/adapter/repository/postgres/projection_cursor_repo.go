package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledger-es/internal/infrastructure/postgres/generated"
	"github.com/iho/ledger-es/internal/usecase"
)

// ProjectionCursorRepository implements usecase.ProjectionCursorRepository.
type ProjectionCursorRepository struct {
	queries *generated.Queries
}

// NewProjectionCursorRepository creates a new ProjectionCursorRepository.
func NewProjectionCursorRepository(pool *pgxpool.Pool) *ProjectionCursorRepository {
	return newProjectionCursorRepository(pool)
}

func newProjectionCursorRepository(pool pgxPool) *ProjectionCursorRepository {
	return &ProjectionCursorRepository{queries: generated.New(pool)}
}

// Get returns the stored position of a projection.
func (r *ProjectionCursorRepository) Get(ctx context.Context, name string) (uint64, bool, error) {
	position, err := r.queries.GetProjectionPosition(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(position), true, nil
}

// Save stores the position inside tx.
func (r *ProjectionCursorRepository) Save(ctx context.Context, tx usecase.Transaction, name string, position uint64) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}
	return queries.UpsertProjectionPosition(ctx, generated.UpsertProjectionPositionParams{
		Name:     name,
		Position: int64(position),
	})
}

// List returns every stored cursor.
func (r *ProjectionCursorRepository) List(ctx context.Context) ([]usecase.ProjectionCursor, error) {
	rows, err := r.queries.ListProjectionPositions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ProjectionCursor, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.ProjectionCursor{
			Name:      row.Name,
			Position:  uint64(row.Position),
			UpdatedAt: pgTimestamptzToTime(row.UpdatedAt),
		})
	}
	return out, nil
}
