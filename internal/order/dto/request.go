package dto

import "github.com/shopspring/decimal"

type CreateOrderItemRequest struct {
	MenuItemID int64 `json:"menuitemid"`
	Quantity   int64 `json:"quantity"`
}

// CreateOrderRequest is the POST /orders body.
type CreateOrderRequest struct {
	EmployeeID int64                    `json:"employeeid"`
	CustomerID *int64                   `json:"customerid"`
	TotalCost  decimal.Decimal          `json:"totalcost"`
	OrderWeek  int                      `json:"orderweek"`
	OrderItems []CreateOrderItemRequest `json:"orderItems"`
}

func (r *CreateOrderRequest) ToInput() *CreateOrderInput {
	items := make([]CreateOrderItemInput, len(r.OrderItems))
	for i, it := range r.OrderItems {
		items[i] = CreateOrderItemInput{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}
	return &CreateOrderInput{
		EmployeeID: r.EmployeeID,
		CustomerID: r.CustomerID,
		TotalCost:  r.TotalCost,
		OrderWeek:  r.OrderWeek,
		Items:      items,
	}
}

// SetCompletionRequest is the PATCH body. A missing flag means complete.
type SetCompletionRequest struct {
	IsComplete *bool `json:"isComplete"`
}
