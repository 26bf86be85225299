package model

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID    int64           `db:"id" json:"menuitemid"`
	Name  string          `db:"name" json:"name"`
	Price decimal.Decimal `db:"price" json:"price"`
}

// RecipeLine is the quantity of one ingredient consumed per unit of a menu item.
type RecipeLine struct {
	MenuItemID   int64 `db:"menu_item_id" json:"menuitemid"`
	IngredientID int64 `db:"ingredient_id" json:"ingredientid"`
	Quantity     int64 `db:"quantity" json:"quantity"`
}

type Recipe struct {
	MenuItemID int64        `json:"menuitemid"`
	Lines      []RecipeLine `json:"lines"`
}

// ErrQuantityOverflow means a stock quantity does not fit in an int64.
var ErrQuantityOverflow = errors.New("ingredient quantity overflows")

// Demand returns the ingredient quantities consumed by units of this recipe.
func (r *Recipe) Demand(units int64) (map[int64]int64, error) {
	demand := make(map[int64]int64, len(r.Lines))
	for _, line := range r.Lines {
		qty, err := MulQuantity(line.Quantity, units)
		if err != nil {
			return nil, err
		}
		if demand[line.IngredientID], err = AddQuantity(demand[line.IngredientID], qty); err != nil {
			return nil, err
		}
	}
	return demand, nil
}

// MulQuantity multiplies two non-negative quantities.
func MulQuantity(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrQuantityOverflow
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, ErrQuantityOverflow
	}
	return a * b, nil
}

// AddQuantity adds two non-negative quantities.
func AddQuantity(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, ErrQuantityOverflow
	}
	return a + b, nil
}
