package broker

import (
	"context"
	"time"
)

// Event is the envelope written to the orders topic.
type Event struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated        = "OrderCreated"
	EventOrderItemCompletion = "OrderItemCompletionChanged"
	EventIngredientDepleted  = "IngredientDepleted"
)

// Publisher delivers events after the owning transaction committed.
type Publisher interface {
	Publish(ctx context.Context, key string, events ...Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, ...Event) error { return nil }
func (NopPublisher) Close() error                                    { return nil }
