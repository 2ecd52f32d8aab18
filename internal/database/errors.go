package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Madofly35/GestLoc/internal/apperr"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNotNullViolation     = "23502"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeInvalidText          = "22P02"
)

// MapError translates driver errors into apperr kinds. entity names the record
// used in not-found messages. Unknown errors are returned unchanged.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, apperr.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s already exists (%s): %w", entity, pgErr.ConstraintName, apperr.ErrConflict)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s references a missing record (%s): %w", entity, pgErr.ConstraintName, apperr.ErrNotFound)
	case codeCheckViolation, codeNotNullViolation, codeInvalidText:
		return fmt.Errorf("%s violates %s: %w", entity, pgErr.ConstraintName, apperr.ErrValidation)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("concurrent update of %s, retry: %w", entity, apperr.ErrConflict)
	}

	return err
}
