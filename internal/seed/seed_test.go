package seed

import (
	"context"
	"strings"
	"testing"

	menurepo "github.com/fekuna/omnipos-order-service/internal/menu/repository"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/fekuna/omnipos-order-service/internal/pkg/database/dbtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
ingredients:
  - {id: 1, name: Boba, remaining: 100}
  - {id: 2, name: Milk, remaining: 40}
menu_items:
  - id: 1
    name: Boba Milk Tea
    price: "5.25"
    recipe:
      - {ingredient_id: 1, quantity: 5}
      - {ingredient_id: 2, quantity: 1}
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, f.Ingredients, 2)
	require.Len(t, f.MenuItems, 1)
	assert.Equal(t, "5.25", f.MenuItems[0].Price)
	assert.Len(t, f.MenuItems[0].Recipe, 2)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "ingredients:\n  - {id: 1, name: Boba, stock: 3}\n",
		"negative stock":     "ingredients:\n  - {id: 1, name: Boba, remaining: -1}\n",
		"duplicate id":       "ingredients:\n  - {id: 1, name: Boba}\n  - {id: 1, name: Milk}\n",
		"bad price":          "menu_items:\n  - {id: 1, name: Tea, price: abc}\n",
		"unknown ingredient": "menu_items:\n  - id: 1\n    name: Tea\n    price: \"1\"\n    recipe:\n      - {ingredient_id: 9, quantity: 1}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestApply_Upserts(t *testing.T) {
	db := dbtest.Open(t)
	txm := database.NewTxManager(db, 0)
	ctx := context.Background()

	f, err := Parse(strings.NewReader(fixtureYAML))
	require.NoError(t, err)

	res, err := Apply(ctx, txm, db, f)
	require.NoError(t, err)
	assert.Equal(t, &Result{Ingredients: 2, MenuItems: 1, RecipeLines: 2}, res)

	// second run replaces rather than duplicates
	f.Ingredients[0].Remaining = 7
	f.MenuItems[0].Recipe = f.MenuItems[0].Recipe[:1]
	_, err = Apply(ctx, txm, db, f)
	require.NoError(t, err)

	var remaining int64
	require.NoError(t, db.Get(&remaining, `SELECT remaining FROM ingredients WHERE id = 1`))
	assert.Equal(t, int64(7), remaining)

	menu := menurepo.NewSQLRepository(db)
	recipe, err := menu.Recipe(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recipe.Lines, 1)
	assert.Equal(t, int64(5), recipe.Lines[0].Quantity)

	item, err := menu.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.25").Equal(item.Price))
}
