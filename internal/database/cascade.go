package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Madofly35/GestLoc/internal/txn"
)

// DeleteCollecting deletes one row and returns the receipt storage paths that the
// cascade removes with it. collect and del both take the row id as $1 and run in
// the same transaction. A delete touching no row yields apperr.ErrNotFound.
func (db *DB) DeleteCollecting(ctx context.Context, entity, collect, del string, id any) ([]string, error) {
	var paths []string

	begin := func(ctx context.Context) (*Tx, error) {
		return db.Begin(ctx, nil)
	}

	err := txn.Run(ctx, begin, func(tx *Tx) error {
		var err error

		paths, err = collectPaths(ctx, tx, collect, id)
		if err != nil {
			return fmt.Errorf("collecting receipt paths of %s: %w", entity, err)
		}

		res, err := tx.ExecContext(ctx, del, id)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", entity, MapError(err, entity))
		}

		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return MapError(sql.ErrNoRows, entity)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func collectPaths(ctx context.Context, tx *Tx, query string, id any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning receipt path: %w", err)
		}

		paths = append(paths, p)
	}

	return paths, rows.Err()
}
