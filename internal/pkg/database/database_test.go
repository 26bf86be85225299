package database_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database/dbtest"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, database.Migrate(context.Background(), db), "iteration %d", i)
	}

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM orders"))
	assert.Equal(t, 0, count)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	db := dbtest.Open(t)
	txm := database.NewTxManager(db, 0)

	err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
		conn := database.Conn(ctx, db)
		_, err := conn.ExecContext(ctx, conn.Rebind("INSERT INTO ingredients (id, name, remaining) VALUES (?, ?, ?)"), 1, "Boba", 100)
		return err
	})
	require.NoError(t, err)

	var remaining int64
	require.NoError(t, db.Get(&remaining, "SELECT remaining FROM ingredients WHERE id = 1"))
	assert.Equal(t, int64(100), remaining)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	txm := database.NewTxManager(db, 0)
	boom := errors.New("boom")

	err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
		conn := database.Conn(ctx, db)
		if _, err := conn.ExecContext(ctx, conn.Rebind("INSERT INTO ingredients (id, name, remaining) VALUES (?, ?, ?)"), 1, "Boba", 100); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM ingredients"))
	assert.Equal(t, 0, count)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	db := dbtest.Open(t)
	txm := database.NewTxManager(db, 0)

	err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
		outer := database.Conn(ctx, db)
		return txm.WithinTx(ctx, func(inner context.Context) error {
			assert.Same(t, outer, database.Conn(inner, db))
			return nil
		})
	})
	require.NoError(t, err)
}

func TestConn_WithoutTxReturnsDB(t *testing.T) {
	db := dbtest.Open(t)
	assert.Same(t, db, database.Conn(context.Background(), db))
	assert.Equal(t, "", database.ForUpdate(db))
	assert.False(t, database.IsPostgres(db))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, apperror.KindConflict},
		{"serialization", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), apperror.KindConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, apperror.KindConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, apperror.KindInternal},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, apperror.KindConflict},
		{"already classified", apperror.Validation("bad"), apperror.KindValidation},
		{"plain", errors.New("boom"), apperror.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.KindOf(database.Translate(tt.err)))
		})
	}
	assert.NoError(t, database.Translate(nil))
}
