package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/ingredient/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/google/uuid"
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

func (r *SQLRepository) FindByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	conn := r.conn(ctx)
	var ing model.Ingredient
	err := sqlx.GetContext(ctx, conn, &ing, conn.Rebind(`SELECT id, name, remaining FROM ingredients WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ing, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.IngredientFilters) ([]model.Ingredient, int, error) {
	conn := r.conn(ctx)

	conditions := []string{}
	args := map[string]interface{}{}

	if f.NameQuery != "" {
		conditions = append(conditions, "LOWER(name) LIKE :name")
		args["name"] = "%" + strings.ToLower(f.NameQuery) + "%"
	}
	if f.Depleted {
		conditions = append(conditions, "remaining <= 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM ingredients"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, name, remaining FROM ingredients" + whereClause + " ORDER BY name"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	items := []model.Ingredient{}
	err = sqlx.SelectContext(ctx, conn, &items, conn.Rebind(listQuery), listArgs...)
	return items, count, err
}

func (r *SQLRepository) LockByIDs(ctx context.Context, ids []int64) ([]model.Ingredient, error) {
	if len(ids) == 0 {
		return []model.Ingredient{}, nil
	}
	conn := r.conn(ctx)

	// Stable id order keeps concurrent lockers from deadlocking on each other.
	query, args, err := sqlx.In(`SELECT id, name, remaining FROM ingredients WHERE id IN (?) ORDER BY id`+database.ForUpdate(conn), ids)
	if err != nil {
		return nil, err
	}

	var items []model.Ingredient
	if err := sqlx.SelectContext(ctx, conn, &items, conn.Rebind(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLRepository) Debit(ctx context.Context, id, amount int64, ref model.MovementRef) (int64, error) {
	return r.adjust(ctx, id, -amount, model.MovementDebit, ref)
}

func (r *SQLRepository) Credit(ctx context.Context, id, amount int64, ref model.MovementRef) (int64, error) {
	return r.adjust(ctx, id, amount, model.MovementCredit, ref)
}

func (r *SQLRepository) adjust(ctx context.Context, id, delta int64, movementType string, ref model.MovementRef) (int64, error) {
	conn := r.conn(ctx)

	// 1. Update stock
	var after int64
	err := sqlx.GetContext(ctx, conn, &after,
		conn.Rebind(`UPDATE ingredients SET remaining = remaining + ? WHERE id = ? RETURNING remaining`), delta, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NotFoundf("ingredient %d not found", id)
		}
		return 0, fmt.Errorf("failed to update ingredient %d: %w", id, err)
	}

	// 2. Log movement
	movement := &model.IngredientMovement{
		ID:             uuid.New().String(),
		IngredientID:   id,
		MovementType:   movementType,
		QuantityChange: delta,
		QuantityBefore: after - delta,
		QuantityAfter:  after,
		CreatedAt:      time.Now().UTC(),
	}
	if ref.Type != "" {
		refType, refID := ref.Type, ref.ID
		movement.ReferenceType = &refType
		movement.ReferenceID = &refID
	}

	insertLogQuery := `
        INSERT INTO ingredient_movements (
            id, ingredient_id, movement_type, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, created_at
        )
        VALUES (
            :id, :ingredient_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, conn, insertLogQuery, movement); err != nil {
		return 0, fmt.Errorf("failed to log movement: %w", err)
	}

	return after, nil
}

func (r *SQLRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.IngredientMovement, int, error) {
	conn := r.conn(ctx)

	conditions := []string{}
	args := map[string]interface{}{}

	if f.IngredientID != 0 {
		conditions = append(conditions, "ingredient_id = :ingredient_id")
		args["ingredient_id"] = f.IngredientID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM ingredient_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := sqlx.GetContext(ctx, conn, &count, conn.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM ingredient_movements" + whereClause + " ORDER BY created_at DESC, id"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	items := []model.IngredientMovement{}
	err = sqlx.SelectContext(ctx, conn, &items, conn.Rebind(listQuery), listArgs...)
	return items, count, err
}
