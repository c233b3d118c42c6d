package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/apperror"
	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService converts carts into orders and serves order queries.
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateFromCart drains the cart into a new PENDING order. The store layer
// runs the conversion as one transaction; this layer only decides whether
// the cart is convertible, records metrics, and publishes the event.
func (s *OrderService) CreateFromCart(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateFromCart")
	defer span.End()

	cart, err := s.store.GetCartWithItems(ctx, cartID)
	if err != nil {
		if errors.Is(err, apperror.ErrCartNotFound) {
			// An unresolvable cart and an empty one look the same to the
			// caller: there is nothing to check out.
			return nil, apperror.ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperror.ErrEmptyCart
	}

	start := time.Now()
	order, err := s.store.CreateOrderFromCart(ctx, cart, userID)
	util.CheckoutLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues(checkoutFailureReason(err)).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created from cart",
		zap.String("order_id", order.ID.String()),
		zap.String("cart_id", cartID.String()),
		zap.String("total", order.TotalAmount.String()))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       orderItemData(order.Items),
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// List retrieves orders newest first, optionally filtered by owner
func (s *OrderService) List(ctx context.Context, userID *uuid.UUID) ([]models.Order, error) {
	return s.store.ListOrders(ctx, userID)
}

// Get retrieves one order. An owner mismatch is reported exactly like an
// absent order so callers cannot probe for existence.
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID, userID *uuid.UUID) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != nil && (order.UserID == nil || *order.UserID != *userID) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrOrderNotFound, orderID)
	}
	return order, nil
}

// UpdateStatus overwrites the order status with the canonical form of the
// given value. Any valid status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	canonical, ok := models.NormalizeOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidStatus, status)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	oldStatus := order.Status

	if err := s.store.UpdateOrderStatus(ctx, orderID, canonical); err != nil {
		return nil, err
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(canonical).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("old_status", oldStatus),
		zap.String("new_status", canonical))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: canonical,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return s.store.GetOrderByID(ctx, orderID)
}

func orderItemData(items []models.OrderItem) []models.OrderItemData {
	data := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		data = append(data, models.OrderItemData{
			ProductID:   *item.ProductID,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
		})
	}
	return data
}

func checkoutFailureReason(err error) string {
	var stockErr *apperror.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.Is(err, apperror.ErrProductVanished):
		return "product_vanished"
	default:
		return "internal"
	}
}
