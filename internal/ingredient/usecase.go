package ingredient

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/ingredient/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
)

type UseCase interface {
	ListIngredients(ctx context.Context, filters *dto.IngredientFilters) ([]model.Ingredient, int, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.IngredientMovement, int, error)
}
