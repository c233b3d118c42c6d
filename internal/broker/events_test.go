package broker

import (
	"context"
	"encoding/json"
	"testing"

	"shop-service/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHandlerRoutesEvents(t *testing.T) {
	handler := NewEventHandler()

	var created *models.OrderCreatedEvent
	var changed *models.OrderStatusChangedEvent
	handler.OnOrderCreated(func(_ context.Context, e *models.OrderCreatedEvent) error {
		created = e
		return nil
	})
	handler.OnOrderStatusChanged(func(_ context.Context, e *models.OrderStatusChangedEvent) error {
		changed = e
		return nil
	})

	orderID := uuid.New()

	payload, err := json.Marshal(&models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
		},
		OrderID: orderID,
	})
	require.NoError(t, err)
	require.NoError(t, handler.HandleMessage(context.Background(), kafka.Message{Value: payload}))
	require.NotNil(t, created)
	assert.Equal(t, orderID, created.OrderID)

	payload, err = json.Marshal(&models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
		},
		OrderID:   orderID,
		OldStatus: models.OrderStatusPending,
		NewStatus: models.OrderStatusShipped,
	})
	require.NoError(t, err)
	require.NoError(t, handler.HandleMessage(context.Background(), kafka.Message{Value: payload}))
	require.NotNil(t, changed)
	assert.Equal(t, orderID, changed.OrderID)
	assert.Equal(t, models.OrderStatusPending, changed.OldStatus)
	assert.Equal(t, models.OrderStatusShipped, changed.NewStatus)
}

func TestEventHandlerRejectsMalformedPayload(t *testing.T) {
	handler := NewEventHandler()

	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
