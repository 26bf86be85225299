package order

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItemDetail, error)
	SetItemCompletion(ctx context.Context, input *dto.SetItemCompletionInput) (*model.OrderItem, error)
}

// CompletionPolicy decides what a completion does when a debit would take an
// ingredient below zero. Creation-time checks and completion-time debits are
// separate transactions, so two orders can both pass the check against stock
// only one of them can consume.
type CompletionPolicy string

const (
	// AllowNegative applies the debit anyway and reports the depletion.
	AllowNegative CompletionPolicy = "allow-negative"
	// RejectNegative fails the completion with InsufficientInventoryError.
	RejectNegative CompletionPolicy = "reject-negative"
)

func ParseCompletionPolicy(s string) (CompletionPolicy, error) {
	switch p := CompletionPolicy(s); p {
	case AllowNegative, RejectNegative:
		return p, nil
	case "":
		return AllowNegative, nil
	default:
		return "", fmt.Errorf("unknown completion policy %q", s)
	}
}
