package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// EntityWithVersion is anything stored with a row_version column.
type EntityWithVersion interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	entity T,
	expectedVersion int64,
) (pgconn.CommandTag, error)

type GetByIDFunc[T EntityWithVersion] func(
	ctx context.Context,
	id string,
) (T, error)

// WithRetry reads, mutates and conditionally writes until the write lands
// on the version it read, or maxRetries is exhausted.
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id string,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, err := getByID(ctx, id)
		if err != nil {
			return err
		}
		var zero T
		if current == zero {
			return pgx.ErrNoRows
		}

		expected := current.GetRowVersion()
		if err := mutate(current); err != nil {
			return err
		}

		tag, err := updateIfVersion(ctx, current, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(expected + 1)
			return nil
		}
	}
	return fmt.Errorf("too much contention updating %q", id)
}
