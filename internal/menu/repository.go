package menu

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

// RecipeIndex resolves the ingredients a menu item consumes per unit.
type RecipeIndex interface {
	// Recipe returns a NotFound apperror when the menu item does not exist.
	// A menu item without recipe lines yields an empty recipe.
	Recipe(ctx context.Context, menuItemID int64) (*model.Recipe, error)
}

type Repository interface {
	RecipeIndex
	FindByID(ctx context.Context, id int64) (*model.MenuItem, error)
}
