package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// TxManager runs a unit of work inside one database transaction. Repositories
// pick the transaction up from the context through Conn.
type TxManager struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

func NewTxManager(db *sqlx.DB, lockTimeout time.Duration) *TxManager {
	return &TxManager{db: db, lockTimeout: lockTimeout}
}

// WithinTx commits when fn returns nil and rolls back otherwise. Nested calls
// join the outer transaction. Errors are passed through Translate.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	opts := &sql.TxOptions{}
	if m.db.DriverName() == DriverPostgres {
		opts.Isolation = sql.LevelReadCommitted
	}

	tx, err := m.db.BeginTxx(ctx, opts)
	if err != nil {
		return Translate(fmt.Errorf("begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if m.lockTimeout > 0 && m.db.DriverName() == DriverPostgres {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", m.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return Translate(fmt.Errorf("set lock timeout: %w", err))
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return Translate(err)
	}

	if err := tx.Commit(); err != nil {
		return Translate(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Conn returns the transaction carried by ctx, or db when there is none.
func Conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
