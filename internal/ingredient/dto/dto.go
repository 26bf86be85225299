package dto

type IngredientFilters struct {
	NameQuery string
	// Depleted keeps only ingredients at or below zero.
	Depleted bool
	Page     int
	PageSize int
}

type MovementFilters struct {
	IngredientID int64
	MovementType string
	Page         int
	PageSize     int
}
