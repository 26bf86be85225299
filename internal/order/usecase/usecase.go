package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/ingredient"
	"github.com/fekuna/omnipos-order-service/internal/menu"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/fekuna/omnipos-order-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-order-service/internal/sequence"
	"go.uber.org/zap"
)

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Deps struct {
	Repo        order.Repository
	Ingredients ingredient.Repository
	Recipes     menu.RecipeIndex
	IDs         sequence.Allocator
	Tx          TxRunner
	Publisher   broker.Publisher
	Logger      logger.ZapLogger
	Policy      order.CompletionPolicy
}

type orderUseCase struct {
	repo        order.Repository
	ingredients ingredient.Repository
	recipes     menu.RecipeIndex
	ids         sequence.Allocator
	tx          TxRunner
	publisher   broker.Publisher
	logger      logger.ZapLogger
	policy      order.CompletionPolicy
	now         func() time.Time
}

func NewOrderUseCase(d Deps) order.UseCase {
	publisher := d.Publisher
	if publisher == nil {
		publisher = broker.NopPublisher{}
	}
	policy := d.Policy
	if policy == "" {
		policy = order.AllowNegative
	}
	return &orderUseCase{
		repo:        d.Repo,
		ingredients: d.Ingredients,
		recipes:     d.Recipes,
		ids:         d.IDs,
		tx:          d.Tx,
		publisher:   publisher,
		logger:      d.Logger,
		policy:      policy,
		now:         time.Now,
	}
}

// CreateOrder checks that current stock covers the summed demand of every
// line and persists the order with all lines incomplete. Stock is not debited
// here: that happens when a line is marked complete.
func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *model.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 1. Total demand per ingredient across all lines
		demand, err := uc.demandFor(ctx, input.Items)
		if err != nil {
			return err
		}

		// 2. Sufficiency against locked stock rows
		if err := uc.checkStock(ctx, demand); err != nil {
			return err
		}

		// 3. Order row
		orderID, err := uc.ids.NextID(ctx, sequence.KindOrder)
		if err != nil {
			return err
		}
		o := &model.Order{
			ID:         orderID,
			CreatedAt:  uc.now().UTC().Truncate(time.Microsecond),
			CustomerID: input.CustomerID,
			EmployeeID: input.EmployeeID,
			TotalCost:  input.TotalCost,
			OrderWeek:  input.OrderWeek,
			IsComplete: false,
		}
		if err := uc.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// 4. Lines
		for _, in := range input.Items {
			itemID, err := uc.ids.NextID(ctx, sequence.KindOrderItem)
			if err != nil {
				return err
			}
			item := model.OrderItem{
				ID:         itemID,
				OrderID:    orderID,
				MenuItemID: in.MenuItemID,
				Quantity:   in.Quantity,
				IsComplete: false,
			}
			if err := uc.repo.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			o.Items = append(o.Items, item)
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int64("employee_id", created.EmployeeID),
		zap.Int("items", len(created.Items)),
	)
	uc.publish(ctx, created.ID, orderCreatedEvent(created))

	return created, nil
}

func (uc *orderUseCase) demandFor(ctx context.Context, items []dto.CreateOrderItemInput) (map[int64]int64, error) {
	demand := map[int64]int64{}
	for _, item := range items {
		recipe, err := uc.recipes.Recipe(ctx, item.MenuItemID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return nil, apperror.Validationf("menu item %d does not exist", item.MenuItemID)
			}
			return nil, err
		}
		lineDemand, err := recipe.Demand(item.Quantity)
		if err != nil {
			return nil, apperror.Validationf("menu item %d: quantity %d is too large", item.MenuItemID, item.Quantity)
		}
		for ingredientID, qty := range lineDemand {
			if demand[ingredientID], err = model.AddQuantity(demand[ingredientID], qty); err != nil {
				return nil, apperror.Validation("order quantities are too large")
			}
		}
	}
	return demand, nil
}

func (uc *orderUseCase) checkStock(ctx context.Context, demand map[int64]int64) error {
	ids := make([]int64, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	stock, err := uc.ingredients.LockByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]model.Ingredient, len(stock))
	for _, ing := range stock {
		byID[ing.ID] = ing
	}

	for _, id := range ids {
		ing, ok := byID[id]
		if !ok {
			return fmt.Errorf("recipe references missing ingredient %d", id)
		}
		if demand[id] > ing.Remaining {
			return apperror.InsufficientInventory(ing.Name, demand[id], ing.Remaining)
		}
	}
	return nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFoundf("order %d not found", id)
	}
	items, err := uc.repo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (uc *orderUseCase) ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItemDetail, error) {
	o, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFoundf("order %d not found", orderID)
	}
	return uc.repo.ListItemDetails(ctx, orderID)
}

// SetItemCompletion moves a line to the requested state. Stock moves only on a
// real transition; the flag write and the order's aggregate recompute happen
// on every call.
func (uc *orderUseCase) SetItemCompletion(ctx context.Context, input *dto.SetItemCompletionInput) (*model.OrderItem, error) {
	var (
		updated    *model.OrderItem
		transition bool
		depleted   []model.Ingredient
		orderDone  bool
	)

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		depleted = nil

		// 1. Load the line, then lock parent order before the line itself
		item, err := uc.repo.FindItemByID(ctx, input.OrderItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.NotFoundf("order item %d not found", input.OrderItemID)
		}
		parent, err := uc.repo.LockByID(ctx, item.OrderID)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperror.NotFoundf("order %d not found", item.OrderID)
		}
		item, err = uc.repo.LockItemByID(ctx, input.OrderItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.NotFoundf("order item %d not found", input.OrderItemID)
		}

		// 2-3. Inventory delta only on an actual transition
		transition = item.IsComplete != input.IsComplete
		if transition {
			depleted, err = uc.applyInventory(ctx, item, input.IsComplete)
			if err != nil {
				return err
			}
		}

		// 4. Line flag, written even when unchanged
		item.IsComplete = input.IsComplete
		if err := uc.repo.UpdateItemCompletion(ctx, item.ID, item.IsComplete); err != nil {
			return fmt.Errorf("update order item: %w", err)
		}

		// 5. Aggregate flag from all lines
		lines, err := uc.repo.ListItems(ctx, parent.ID)
		if err != nil {
			return err
		}
		parent.Items = lines
		orderDone = parent.Recompute()
		if err := uc.repo.UpdateCompletion(ctx, parent.ID, orderDone); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transition {
		uc.logger.Info("order item completion changed",
			zap.Int64("order_item_id", updated.ID),
			zap.Int64("order_id", updated.OrderID),
			zap.Bool("is_complete", updated.IsComplete),
			zap.Bool("order_complete", orderDone),
		)
		events := []broker.Event{completionChangedEvent(updated, orderDone)}
		for _, ing := range depleted {
			uc.logger.Warn("ingredient stock below zero after completion",
				zap.Int64("ingredient_id", ing.ID),
				zap.String("ingredient", ing.Name),
				zap.Int64("remaining", ing.Remaining),
				zap.Int64("order_item_id", updated.ID),
			)
			events = append(events, ingredientDepletedEvent(ing, updated))
		}
		uc.publish(ctx, updated.OrderID, events...)
	}

	return updated, nil
}

// applyInventory debits (complete) or credits (reopen) recipe quantity times
// line quantity for every ingredient of the line's menu item. It returns the
// ingredients a debit left below zero.
func (uc *orderUseCase) applyInventory(ctx context.Context, item *model.OrderItem, complete bool) ([]model.Ingredient, error) {
	recipe, err := uc.recipes.Recipe(ctx, item.MenuItemID)
	if err != nil {
		return nil, err
	}

	ref := model.MovementRef{Type: model.ReferenceOrderItem, ID: item.ID}
	var depleted []model.Ingredient

	for _, line := range recipe.Lines {
		amount, err := model.MulQuantity(line.Quantity, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("order item %d, ingredient %d: %w", item.ID, line.IngredientID, err)
		}
		if amount == 0 {
			continue
		}

		if !complete {
			if _, err := uc.ingredients.Credit(ctx, line.IngredientID, amount, ref); err != nil {
				return nil, err
			}
			continue
		}

		remaining, err := uc.ingredients.Debit(ctx, line.IngredientID, amount, ref)
		if err != nil {
			return nil, err
		}
		if remaining >= 0 {
			continue
		}

		ing, err := uc.ingredients.FindByID(ctx, line.IngredientID)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("ingredient %d", line.IngredientID)
		if ing != nil {
			name = ing.Name
		}
		if uc.policy == order.RejectNegative {
			return nil, apperror.InsufficientInventory(name, amount, remaining+amount)
		}
		depleted = append(depleted, model.Ingredient{ID: line.IngredientID, Name: name, Remaining: remaining})
	}
	return depleted, nil
}

// publish runs after commit; a broker failure never undoes committed state.
func (uc *orderUseCase) publish(ctx context.Context, orderID int64, events ...broker.Event) {
	key := fmt.Sprintf("%d", orderID)
	if err := uc.publisher.Publish(context.WithoutCancel(ctx), key, events...); err != nil {
		uc.logger.Error("failed to publish order events", zap.Int64("order_id", orderID), zap.Error(err))
	}
}
