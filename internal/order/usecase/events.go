package usecase

import (
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pkg/broker"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderPayload struct {
	ID         int64              `json:"id"`
	EmployeeID int64              `json:"employee_id"`
	CustomerID *int64             `json:"customer_id,omitempty"`
	TotalCost  decimal.Decimal    `json:"total_cost"`
	OrderWeek  int                `json:"order_week"`
	Items      []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ID         int64 `json:"id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
}

type CompletionPayload struct {
	OrderItemID   int64 `json:"order_item_id"`
	OrderID       int64 `json:"order_id"`
	IsComplete    bool  `json:"is_complete"`
	OrderComplete bool  `json:"order_complete"`
}

type DepletionPayload struct {
	IngredientID int64  `json:"ingredient_id"`
	Name         string `json:"name"`
	Remaining    int64  `json:"remaining"`
	OrderItemID  int64  `json:"order_item_id"`
}

func newEvent(eventType string, payload interface{}) broker.Event {
	return broker.Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

func orderCreatedEvent(o *model.Order) broker.Event {
	items := make([]OrderItemPayload, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemPayload{ID: it.ID, MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}
	return newEvent(broker.EventOrderCreated, OrderPayload{
		ID:         o.ID,
		EmployeeID: o.EmployeeID,
		CustomerID: o.CustomerID,
		TotalCost:  o.TotalCost,
		OrderWeek:  o.OrderWeek,
		Items:      items,
	})
}

func completionChangedEvent(item *model.OrderItem, orderComplete bool) broker.Event {
	return newEvent(broker.EventOrderItemCompletion, CompletionPayload{
		OrderItemID:   item.ID,
		OrderID:       item.OrderID,
		IsComplete:    item.IsComplete,
		OrderComplete: orderComplete,
	})
}

func ingredientDepletedEvent(ing model.Ingredient, item *model.OrderItem) broker.Event {
	return newEvent(broker.EventIngredientDepleted, DepletionPayload{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Remaining:    ing.Remaining,
		OrderItemID:  item.ID,
	})
}
