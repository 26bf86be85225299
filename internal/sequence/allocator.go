// Package sequence allocates integer identifiers per entity kind.
//
// Each kind owns one row in id_sequences. NextID advances it with a single
// upsert-returning statement, so the row lock taken by that statement is held
// until the enclosing transaction ends: concurrent allocators of the same kind
// queue on it, allocators of different kinds never touch each other's row.
// If the transaction rolls back, the value is handed out again, which is fine
// because nothing referencing it was committed either.
package sequence

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/jmoiron/sqlx"
)

type Kind string

const (
	KindOrder     Kind = "order"
	KindOrderItem Kind = "order_item"
)

// tables maps each kind to the table whose ids it issues.
var tables = map[Kind]string{
	KindOrder:     "orders",
	KindOrderItem: "order_items",
}

type Allocator interface {
	NextID(ctx context.Context, kind Kind) (int64, error)
}

type SQLAllocator struct {
	DB *sqlx.DB
}

func NewSQLAllocator(db *sqlx.DB) *SQLAllocator {
	return &SQLAllocator{DB: db}
}

// NextID returns a value strictly greater than every value previously issued
// for kind. It runs in the transaction carried by ctx, if any.
func (a *SQLAllocator) NextID(ctx context.Context, kind Kind) (int64, error) {
	if _, ok := tables[kind]; !ok {
		return 0, fmt.Errorf("unknown sequence kind %q", kind)
	}

	conn := database.Conn(ctx, a.DB)
	query := conn.Rebind(`
        INSERT INTO id_sequences (kind, last_value) VALUES (?, 1)
        ON CONFLICT (kind) DO UPDATE SET last_value = id_sequences.last_value + 1
        RETURNING last_value
    `)

	var id int64
	if err := sqlx.GetContext(ctx, conn, &id, query, string(kind)); err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", kind, err)
	}
	return id, nil
}

// Sync raises every counter to at least the largest id already stored, for
// databases whose rows were written before the counters existed.
func (a *SQLAllocator) Sync(ctx context.Context) error {
	for kind, table := range tables {
		var maxID int64
		if err := a.DB.GetContext(ctx, &maxID, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table)); err != nil {
			return fmt.Errorf("read max %s id: %w", kind, err)
		}

		query := a.DB.Rebind(`
            INSERT INTO id_sequences (kind, last_value) VALUES (?, ?)
            ON CONFLICT (kind) DO UPDATE SET last_value = excluded.last_value
            WHERE id_sequences.last_value < excluded.last_value
        `)
		if _, err := a.DB.ExecContext(ctx, query, string(kind), maxID); err != nil {
			return fmt.Errorf("sync %s sequence: %w", kind, err)
		}
	}
	return nil
}
