package dto

import (
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity bounds a single line so recipe demand stays far from int64 limits.
const MaxItemQuantity = 10000

// maxTotalCost is the largest value a NUMERIC(10,2) column holds.
var maxTotalCost = decimal.RequireFromString("99999999.99")

type CreateOrderItemInput struct {
	MenuItemID int64
	Quantity   int64
}

type CreateOrderInput struct {
	EmployeeID int64
	CustomerID *int64
	TotalCost  decimal.Decimal
	OrderWeek  int
	Items      []CreateOrderItemInput
}

// Validate runs before any store access.
func (in *CreateOrderInput) Validate() error {
	if len(in.Items) == 0 {
		return apperror.Validation("order must contain at least one item")
	}
	if in.EmployeeID <= 0 {
		return apperror.Validation("employeeid is required")
	}
	if in.CustomerID != nil && *in.CustomerID <= 0 {
		return apperror.Validation("customerid must be a positive integer")
	}
	if in.TotalCost.IsNegative() {
		return apperror.Validation("totalcost cannot be negative")
	}
	if !in.TotalCost.Equal(in.TotalCost.Round(2)) {
		return apperror.Validation("totalcost cannot have more than 2 decimal places")
	}
	if in.TotalCost.GreaterThan(maxTotalCost) {
		return apperror.Validationf("totalcost cannot exceed %s", maxTotalCost.StringFixed(2))
	}
	if in.OrderWeek < 1 || in.OrderWeek > 53 {
		return apperror.Validationf("orderweek must be between 1 and 53, got %d", in.OrderWeek)
	}
	for i, item := range in.Items {
		if item.MenuItemID <= 0 {
			return apperror.Validationf("orderItems[%d]: menuitemid is required", i)
		}
		if item.Quantity <= 0 {
			return apperror.Validationf("orderItems[%d]: quantity must be positive", i)
		}
		if item.Quantity > MaxItemQuantity {
			return apperror.Validationf("orderItems[%d]: quantity cannot exceed %d", i, MaxItemQuantity)
		}
	}
	return nil
}

type SetItemCompletionInput struct {
	OrderItemID int64
	IsComplete  bool
}
