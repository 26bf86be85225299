package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) conn(ctx context.Context) sqlx.ExtContext {
	return database.Conn(ctx, r.DB)
}

const orderColumns = `id, created_at, customer_id, employee_id, total_cost, order_week, is_complete`

const itemColumns = `id, order_id, menu_item_id, quantity, is_complete`

func (r *SQLRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (
            id, created_at, customer_id, employee_id, total_cost, order_week, is_complete
        )
        VALUES (
            :id, :created_at, :customer_id, :employee_id, :total_cost, :order_week, :is_complete
        )
    `
	_, err := sqlx.NamedExecContext(ctx, r.conn(ctx), query, o)
	return err
}

func (r *SQLRepository) CreateItem(ctx context.Context, item *model.OrderItem) error {
	query := `
        INSERT INTO order_items (id, order_id, menu_item_id, quantity, is_complete)
        VALUES (:id, :order_id, :menu_item_id, :quantity, :is_complete)
    `
	_, err := sqlx.NamedExecContext(ctx, r.conn(ctx), query, item)
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOrder(ctx, id, "")
}

func (r *SQLRepository) LockByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOrder(ctx, id, database.ForUpdate(r.conn(ctx)))
}

func (r *SQLRepository) getOrder(ctx context.Context, id int64, lock string) (*model.Order, error) {
	conn := r.conn(ctx)
	var o model.Order
	err := sqlx.GetContext(ctx, conn, &o, conn.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`+lock), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *SQLRepository) UpdateCompletion(ctx context.Context, id int64, complete bool) error {
	conn := r.conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE orders SET is_complete = ? WHERE id = ?`), complete, id)
	return err
}

func (r *SQLRepository) FindItemByID(ctx context.Context, id int64) (*model.OrderItem, error) {
	return r.getItem(ctx, id, "")
}

func (r *SQLRepository) LockItemByID(ctx context.Context, id int64) (*model.OrderItem, error) {
	return r.getItem(ctx, id, database.ForUpdate(r.conn(ctx)))
}

func (r *SQLRepository) getItem(ctx context.Context, id int64, lock string) (*model.OrderItem, error) {
	conn := r.conn(ctx)
	var item model.OrderItem
	err := sqlx.GetContext(ctx, conn, &item, conn.Rebind(`SELECT `+itemColumns+` FROM order_items WHERE id = ?`+lock), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *SQLRepository) ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	conn := r.conn(ctx)
	items := []model.OrderItem{}
	err := sqlx.SelectContext(ctx, conn, &items,
		conn.Rebind(`SELECT `+itemColumns+` FROM order_items WHERE order_id = ? ORDER BY id`), orderID)
	return items, err
}

func (r *SQLRepository) ListItemDetails(ctx context.Context, orderID int64) ([]model.OrderItemDetail, error) {
	conn := r.conn(ctx)
	query := conn.Rebind(`
        SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.is_complete,
               mi.name, mi.price
        FROM order_items oi
        JOIN menu_items mi ON mi.id = oi.menu_item_id
        WHERE oi.order_id = ?
        ORDER BY oi.id
    `)
	items := []model.OrderItemDetail{}
	err := sqlx.SelectContext(ctx, conn, &items, query, orderID)
	return items, err
}

func (r *SQLRepository) UpdateItemCompletion(ctx context.Context, id int64, complete bool) error {
	conn := r.conn(ctx)
	_, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE order_items SET is_complete = ? WHERE id = ?`), complete, id)
	return err
}
