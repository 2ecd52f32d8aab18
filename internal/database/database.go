package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Madofly35/GestLoc/internal/apperr"
)

// Pool bounds the connection pool. AcquireTimeout caps how long a transaction
// waits for a free connection before failing with apperr.ErrUnavailable.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AcquireTimeout  time.Duration
}

type DB struct {
	*sql.DB
	acquireTimeout time.Duration
}

func New(connStr string, pool Pool) (*DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return Wrap(db, pool.AcquireTimeout), nil
}

func Wrap(db *sql.DB, acquireTimeout time.Duration) *DB {
	return &DB{DB: db, acquireTimeout: acquireTimeout}
}

// Tx is a transaction pinned to a dedicated connection. The connection goes back
// to the pool once the transaction is committed or rolled back.
type Tx struct {
	*sql.Tx
	conn *sql.Conn
}

func (tx *Tx) Commit() error {
	err := tx.Tx.Commit()
	tx.conn.Close()

	return err
}

func (tx *Tx) Rollback() error {
	err := tx.Tx.Rollback()
	tx.conn.Close()

	return err
}

// Begin acquires a connection within the configured timeout and starts a transaction on it.
func (db *DB) Begin(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	acquireCtx := ctx

	if db.acquireTimeout > 0 {
		var cancel context.CancelFunc

		acquireCtx, cancel = context.WithTimeout(ctx, db.acquireTimeout)
		defer cancel()
	}

	conn, err := db.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("acquiring connection within %s: %w", db.acquireTimeout, apperr.ErrUnavailable)
		}

		return nil, fmt.Errorf("acquiring connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &Tx{Tx: tx, conn: conn}, nil
}
