// Package txn runs units of work inside a database transaction.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Tx is the minimal contract of a transaction handed out by a repository.
type Tx interface {
	Commit() error
	Rollback() error
}

// Run begins a transaction, passes it to fn and commits when fn returns nil.
// Errors and panics raised by fn roll the transaction back before they propagate.
func Run[T Tx](ctx context.Context, begin func(context.Context) (T, error), fn func(T) error) error {
	tx, err := begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	done := false

	defer func() {
		if done {
			return
		}

		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	done = true

	return nil
}
