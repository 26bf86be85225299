package ingredient

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/ingredient/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
)

// Repository is the ingredient store. Methods that mutate stock must run inside
// the caller's transaction (see database.TxManager).
type Repository interface {
	FindByID(ctx context.Context, id int64) (*model.Ingredient, error)
	FindAll(ctx context.Context, filters *dto.IngredientFilters) ([]model.Ingredient, int, error)

	// LockByIDs reads the rows in id order and holds them until the transaction ends.
	LockByIDs(ctx context.Context, ids []int64) ([]model.Ingredient, error)

	// Debit and Credit apply a delta without any floor check and return the new count.
	Debit(ctx context.Context, id, amount int64, ref model.MovementRef) (int64, error)
	Credit(ctx context.Context, id, amount int64, ref model.MovementRef) (int64, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.IngredientMovement, int, error)
}
