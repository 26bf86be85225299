// Package seed loads ingredient stock, menu items and recipes from a YAML
// fixture. It stands in for the menu and inventory admin screens, which live
// outside this service.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fekuna/omnipos-order-service/internal/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Ingredients []Ingredient `yaml:"ingredients"`
	MenuItems   []MenuItem   `yaml:"menu_items"`
}

type Ingredient struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Remaining int64  `yaml:"remaining"`
}

type MenuItem struct {
	ID     int64        `yaml:"id"`
	Name   string       `yaml:"name"`
	Price  string       `yaml:"price"`
	Recipe []RecipeLine `yaml:"recipe"`
}

type RecipeLine struct {
	IngredientID int64 `yaml:"ingredient_id"`
	Quantity     int64 `yaml:"quantity"`
}

// Result counts the rows written by Apply.
type Result struct {
	Ingredients int
	MenuItems   int
	RecipeLines int
}

func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(bytes.NewReader(raw))
}

// Parse decodes and checks a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	ingredients := map[int64]bool{}
	for _, ing := range f.Ingredients {
		if ing.ID <= 0 || ing.Name == "" {
			return fmt.Errorf("ingredient %q: id and name are required", ing.Name)
		}
		if ing.Remaining < 0 {
			return fmt.Errorf("ingredient %q: remaining cannot be negative", ing.Name)
		}
		if ingredients[ing.ID] {
			return fmt.Errorf("ingredient id %d listed twice", ing.ID)
		}
		ingredients[ing.ID] = true
	}

	for _, item := range f.MenuItems {
		if item.ID <= 0 || item.Name == "" {
			return fmt.Errorf("menu item %q: id and name are required", item.Name)
		}
		if _, err := decimal.NewFromString(item.Price); err != nil {
			return fmt.Errorf("menu item %q: invalid price %q", item.Name, item.Price)
		}
		for _, line := range item.Recipe {
			if !ingredients[line.IngredientID] {
				return fmt.Errorf("menu item %q: unknown ingredient %d", item.Name, line.IngredientID)
			}
			if line.Quantity < 0 {
				return fmt.Errorf("menu item %q: recipe quantity cannot be negative", item.Name)
			}
		}
	}
	return nil
}

// Apply upserts the fixture in one transaction. A menu item's recipe is
// replaced as a whole.
func Apply(ctx context.Context, txm *database.TxManager, db *sqlx.DB, f *Fixture) (*Result, error) {
	res := &Result{}
	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		conn := database.Conn(ctx, db)

		for _, ing := range f.Ingredients {
			_, err := conn.ExecContext(ctx, conn.Rebind(`
                INSERT INTO ingredients (id, name, remaining) VALUES (?, ?, ?)
                ON CONFLICT (id) DO UPDATE SET name = excluded.name, remaining = excluded.remaining
            `), ing.ID, ing.Name, ing.Remaining)
			if err != nil {
				return fmt.Errorf("upsert ingredient %d: %w", ing.ID, err)
			}
			res.Ingredients++
		}

		for _, item := range f.MenuItems {
			price := decimal.RequireFromString(item.Price)
			_, err := conn.ExecContext(ctx, conn.Rebind(`
                INSERT INTO menu_items (id, name, price) VALUES (?, ?, ?)
                ON CONFLICT (id) DO UPDATE SET name = excluded.name, price = excluded.price
            `), item.ID, item.Name, price)
			if err != nil {
				return fmt.Errorf("upsert menu item %d: %w", item.ID, err)
			}
			res.MenuItems++

			if _, err := conn.ExecContext(ctx, conn.Rebind(`DELETE FROM recipe_lines WHERE menu_item_id = ?`), item.ID); err != nil {
				return fmt.Errorf("clear recipe %d: %w", item.ID, err)
			}
			for _, line := range item.Recipe {
				_, err := conn.ExecContext(ctx, conn.Rebind(`
                    INSERT INTO recipe_lines (menu_item_id, ingredient_id, quantity) VALUES (?, ?, ?)
                `), item.ID, line.IngredientID, line.Quantity)
				if err != nil {
					return fmt.Errorf("insert recipe line %d/%d: %w", item.ID, line.IngredientID, err)
				}
				res.RecipeLines++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
