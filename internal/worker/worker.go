package worker

import (
	"context"
	"log"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/redisclient"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CacheWorker consumes order events and drops product cache entries whose
// stock changed. Invalidation is idempotent, so replayed events are harmless.
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *redisclient.Client
	logger       *zap.Logger
}

// NewCacheWorker creates a new cache invalidation worker
func NewCacheWorker(consumer *broker.Consumer, cache *redisclient.Client) *CacheWorker {
	w := &CacheWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CacheWorker) Start(ctx context.Context) error {
	log.Println("Starting cache worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	log.Println("Stopping cache worker...")
	return w.consumer.Close()
}

func (w *CacheWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	ids := make([]uuid.UUID, 0, len(event.Items))
	for _, item := range event.Items {
		ids = append(ids, item.ProductID)
	}

	if err := w.cache.InvalidateProducts(ctx, ids); err != nil {
		w.logger.Error("Failed to invalidate product cache entries",
			zap.String("order_id", event.OrderID.String()),
			zap.Error(err))
		return err
	}

	w.logger.Info("Invalidated product cache after checkout",
		zap.String("order_id", event.OrderID.String()),
		zap.Int("products", len(ids)))
	return nil
}

// Status changes never move stock, so there is nothing to invalidate; the
// worker records the transition for the consumer-side audit trail.
func (w *CacheWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status transition consumed",
		zap.String("order_id", event.OrderID.String()),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus))
	return nil
}
