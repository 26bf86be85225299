package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// Event types published by the menu service.
const (
	EventMenuItemUpdated = "MenuItemUpdated"
	EventMenuItemDeleted = "MenuItemDeleted"
	EventRecipeChanged   = "RecipeChanged"
)

type Invalidator interface {
	Invalidate(ctx context.Context, menuItemID int64) error
}

// MenuListener drops cached recipes when the menu service reports a change,
// so the order flow stops reading them before their TTL runs out.
type MenuListener struct {
	consumer    broker.Consumer
	invalidator Invalidator
	logger      logger.ZapLogger
	backoff     time.Duration
}

func NewMenuListener(consumer broker.Consumer, invalidator Invalidator, logger logger.ZapLogger) *MenuListener {
	return &MenuListener{
		consumer:    consumer,
		invalidator: invalidator,
		logger:      logger,
		backoff:     time.Second,
	}
}

func (l *MenuListener) Start(ctx context.Context) {
	l.logger.Info("Starting Menu Kafka Listener")
	for {
		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("Stopping Menu Kafka Listener")
				return
			}
			l.logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.backoff):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

type menuEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   menuPayload `json:"payload"`
}

type menuPayload struct {
	MenuItemID int64 `json:"menu_item_id"`
}

func (l *MenuListener) processMessage(ctx context.Context, value []byte) {
	var event menuEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case EventMenuItemUpdated, EventMenuItemDeleted, EventRecipeChanged:
	default:
		return
	}
	if event.Payload.MenuItemID <= 0 {
		l.logger.Warn("Menu event without menu item id", zap.String("event_id", event.EventID))
		return
	}

	if err := l.invalidator.Invalidate(ctx, event.Payload.MenuItemID); err != nil {
		l.logger.Error("Failed to invalidate cached recipe",
			zap.Int64("menu_item_id", event.Payload.MenuItemID),
			zap.Error(err),
		)
		return
	}
	l.logger.Debug("Cached recipe invalidated",
		zap.String("event_type", event.EventType),
		zap.Int64("menu_item_id", event.Payload.MenuItemID),
	)
}
