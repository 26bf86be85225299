package model

import "time"

type Ingredient struct {
	ID        int64  `db:"id" json:"ingredientid"`
	Name      string `db:"name" json:"name"`
	Remaining int64  `db:"remaining" json:"remaining"`
}

const (
	MovementDebit  = "debit"
	MovementCredit = "credit"

	ReferenceOrderItem = "order_item"
)

// MovementRef names the entity that caused a stock movement.
type MovementRef struct {
	Type string
	ID   int64
}

type IngredientMovement struct {
	ID             string    `db:"id" json:"id"`
	IngredientID   int64     `db:"ingredient_id" json:"ingredientid"`
	MovementType   string    `db:"movement_type" json:"movementtype"`
	QuantityChange int64     `db:"quantity_change" json:"quantitychange"`
	QuantityBefore int64     `db:"quantity_before" json:"quantitybefore"`
	QuantityAfter  int64     `db:"quantity_after" json:"quantityafter"`
	ReferenceType  *string   `db:"reference_type" json:"referencetype"`
	ReferenceID    *int64    `db:"reference_id" json:"referenceid"`
	CreatedAt      time.Time `db:"created_at" json:"createdat"`
}
