package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
)

func TestDB_Begin(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Begin(context.Background(), nil)
	require.NoError(t, err)

	_, err = tx.ExecContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Begin_PoolExhausted(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	sqlDB.SetMaxOpenConns(1)

	db := database.Wrap(sqlDB, 50*time.Millisecond)

	mock.ExpectBegin()
	mock.ExpectRollback()

	held, err := db.Begin(context.Background(), nil)
	require.NoError(t, err)

	_, err = db.Begin(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)

	require.NoError(t, held.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	type testCase struct {
		name string
		err  error
		want error
	}

	tests := []testCase{
		{name: "Unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "tenants_email_key"}, want: apperr.ErrConflict},
		{name: "ForeignKey", err: &pgconn.PgError{Code: "23503"}, want: apperr.ErrNotFound},
		{name: "Check", err: &pgconn.PgError{Code: "23514"}, want: apperr.ErrValidation},
		{name: "Serialization", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40001"}), want: apperr.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, database.MapError(tt.err, "tenant"), tt.want)
		})
	}

	other := errors.New("connection refused")
	assert.Equal(t, other, database.MapError(other, "tenant"))
	assert.NoError(t, database.MapError(nil, "tenant"))
}

func TestDB_DeleteCollecting(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.storage_path").
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"storage_path"}).AddRow("a.pdf").AddRow("b.pdf"))
	mock.ExpectExec("DELETE FROM leases").WithArgs("id-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	paths, err := db.DeleteCollecting(context.Background(), "lease",
		"SELECT r.storage_path FROM receipts r WHERE x = $1", "DELETE FROM leases WHERE id = $1", "id-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DeleteCollecting_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.storage_path").WillReturnRows(sqlmock.NewRows([]string{"storage_path"}))
	mock.ExpectExec("DELETE FROM leases").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = db.DeleteCollecting(context.Background(), "lease",
		"SELECT r.storage_path FROM receipts r WHERE x = $1", "DELETE FROM leases WHERE id = $1", "id-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DeleteCollecting_CollectFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT r.storage_path").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = db.DeleteCollecting(context.Background(), "lease",
		"SELECT r.storage_path FROM receipts r WHERE x = $1", "DELETE FROM leases WHERE id = $1", "id-1")
	assert.ErrorContains(t, err, "collecting receipt paths of lease")
	assert.NoError(t, mock.ExpectationsWereMet())
}
