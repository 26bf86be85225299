package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         int64           `db:"id" json:"orderid"`
	CreatedAt  time.Time       `db:"created_at" json:"createdat"`
	CustomerID *int64          `db:"customer_id" json:"customerid"`
	EmployeeID int64           `db:"employee_id" json:"employeeid"`
	TotalCost  decimal.Decimal `db:"total_cost" json:"totalcost"`
	OrderWeek  int             `db:"order_week" json:"orderweek"`
	IsComplete bool            `db:"is_complete" json:"iscomplete"`
	Items      []OrderItem     `db:"-" json:"orderItems,omitempty"`
}

// Recompute derives the aggregate completion flag from the loaded lines.
// The flag is never assigned any other way.
func (o *Order) Recompute() bool {
	o.IsComplete = AllComplete(o.Items)
	return o.IsComplete
}

// AllComplete is true iff there is at least one line and every line is complete.
func AllComplete(items []OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsComplete {
			return false
		}
	}
	return true
}

type OrderItem struct {
	ID         int64 `db:"id" json:"orderitemid"`
	OrderID    int64 `db:"order_id" json:"orderid"`
	MenuItemID int64 `db:"menu_item_id" json:"menuitemid"`
	Quantity   int64 `db:"quantity" json:"quantity"`
	IsComplete bool  `db:"is_complete" json:"iscomplete"`
}

// OrderItemDetail is a line joined with its menu item for display.
type OrderItemDetail struct {
	OrderItem
	Name  string          `db:"name" json:"name"`
	Price decimal.Decimal `db:"price" json:"price"`
}
