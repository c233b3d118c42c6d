package worker

import (
	"context"
	"encoding/json"
	"testing"

	"shop-service/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestCacheWorkerConsumesStatusTransitions(t *testing.T) {
	// status changes never touch the cache, so no redis client is needed
	w := NewCacheWorker(nil, nil)

	payload, err := json.Marshal(&models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
		},
		OrderID:   uuid.New(),
		OldStatus: models.OrderStatusPending,
		NewStatus: models.OrderStatusProcessing,
	})
	require.NoError(t, err)

	err = w.eventHandler.HandleMessage(context.Background(), kafka.Message{Value: payload})
	require.NoError(t, err)
}
