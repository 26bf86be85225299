package order

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

// Repository persists orders and their lines. Find* return nil, nil when the
// row does not exist. Lock* additionally hold the row until the transaction ends.
type Repository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItem(ctx context.Context, item *model.OrderItem) error

	FindByID(ctx context.Context, id int64) (*model.Order, error)
	LockByID(ctx context.Context, id int64) (*model.Order, error)
	UpdateCompletion(ctx context.Context, id int64, complete bool) error

	FindItemByID(ctx context.Context, id int64) (*model.OrderItem, error)
	LockItemByID(ctx context.Context, id int64) (*model.OrderItem, error)
	ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	ListItemDetails(ctx context.Context, orderID int64) ([]model.OrderItemDetail, error)
	UpdateItemCompletion(ctx context.Context, id int64, complete bool) error
}
