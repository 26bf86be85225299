package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	conn := database.Conn(ctx, r.DB)
	var item model.MenuItem
	err := sqlx.GetContext(ctx, conn, &item, conn.Rebind(`SELECT id, name, price FROM menu_items WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *SQLRepository) Recipe(ctx context.Context, menuItemID int64) (*model.Recipe, error) {
	item, err := r.FindByID(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFoundf("menu item %d not found", menuItemID)
	}

	conn := database.Conn(ctx, r.DB)
	lines := []model.RecipeLine{}
	query := conn.Rebind(`
        SELECT menu_item_id, ingredient_id, quantity
        FROM recipe_lines
        WHERE menu_item_id = ?
        ORDER BY ingredient_id
    `)
	if err := sqlx.SelectContext(ctx, conn, &lines, query, menuItemID); err != nil {
		return nil, err
	}

	return &model.Recipe{MenuItemID: menuItemID, Lines: lines}, nil
}
