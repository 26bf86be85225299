package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-order-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// sliceConsumer hands out queued messages, then blocks until ctx ends.
type sliceConsumer struct {
	msgs []broker.Message
	errs []error
}

func (c *sliceConsumer) ReadMessage(ctx context.Context) (broker.Message, error) {
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return broker.Message{}, err
	}
	if len(c.msgs) > 0 {
		m := c.msgs[0]
		c.msgs = c.msgs[1:]
		return m, nil
	}
	<-ctx.Done()
	return broker.Message{}, ctx.Err()
}

func (c *sliceConsumer) Close() error { return nil }

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return r.err
}

func (r *recordingInvalidator) seen() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}

func msg(s string) broker.Message { return broker.Message{Value: []byte(s)} }

func TestStart_InvalidatesChangedMenuItems(t *testing.T) {
	consumer := &sliceConsumer{
		errs: []error{errors.New("broker unavailable")},
		msgs: []broker.Message{
			msg(`{"event_type":"RecipeChanged","payload":{"menu_item_id":4}}`),
			msg(`{"event_type":"MenuItemCreated","payload":{"menu_item_id":5}}`),
			msg(`not json`),
			msg(`{"event_type":"MenuItemDeleted","payload":{"menu_item_id":6}}`),
			msg(`{"event_type":"MenuItemUpdated","payload":{}}`),
		},
	}
	inv := &recordingInvalidator{}
	core, logs := observer.New(zapcore.DebugLevel)

	l := NewMenuListener(consumer, inv, logger.New(zap.New(core)))
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Menu event without menu item id").Len() == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []int64{4, 6}, inv.seen())
	assert.Equal(t, 1, logs.FilterMessage("Failed to read kafka message").Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to unmarshal event").Len())
	assert.Equal(t, 1, logs.FilterMessage("Menu event without menu item id").Len())
}

func TestProcessMessage_InvalidationFailureIsLogged(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewMenuListener(&sliceConsumer{}, inv, logger.New(zap.New(core)))

	l.processMessage(context.Background(), []byte(`{"event_type":"RecipeChanged","payload":{"menu_item_id":9}}`))

	assert.Equal(t, []int64{9}, inv.seen())
	assert.Equal(t, 1, logs.FilterMessage("Failed to invalidate cached recipe").Len())
}
