package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "1", Event{EventType: EventOrderCreated}))
	assert.NoError(t, p.Close())
}

func TestEvent_JSONShape(t *testing.T) {
	ev := Event{
		EventID:   "e-1",
		EventType: EventIngredientDepleted,
		Payload:   map[string]int64{"ingredient_id": 3},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"event_id": "e-1",
		"event_type": "IngredientDepleted",
		"payload": {"ingredient_id": 3},
		"timestamp": "2026-01-02T03:04:05Z"
	}`, string(data))
}

func TestKafkaProducer_PublishNothingIsNoop(t *testing.T) {
	p := NewProducer(&Config{Brokers: []string{"localhost:9092"}, Topic: "orders.events"})
	defer p.Close()
	assert.NoError(t, p.Publish(context.Background(), "1"))
}
