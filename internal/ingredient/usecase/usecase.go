package usecase

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/ingredient"
	"github.com/fekuna/omnipos-order-service/internal/ingredient/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
)

type ingredientUseCase struct {
	repo   ingredient.Repository
	logger logger.ZapLogger
}

func NewIngredientUseCase(repo ingredient.Repository, log logger.ZapLogger) ingredient.UseCase {
	return &ingredientUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *ingredientUseCase) ListIngredients(ctx context.Context, filters *dto.IngredientFilters) ([]model.Ingredient, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *ingredientUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.IngredientMovement, int, error) {
	if filters.IngredientID != 0 {
		ing, err := uc.repo.FindByID(ctx, filters.IngredientID)
		if err != nil {
			return nil, 0, err
		}
		if ing == nil {
			return nil, 0, apperror.NotFoundf("ingredient %d not found", filters.IngredientID)
		}
	}
	return uc.repo.ListMovements(ctx, filters)
}
