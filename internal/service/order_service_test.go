package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"shop-service/internal/apperror"
	"shop-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutFailureReason(t *testing.T) {
	stockErr := &apperror.InsufficientStockError{ProductName: "widget", Available: 1, Requested: 2}

	assert.Equal(t, "insufficient_stock", checkoutFailureReason(stockErr))
	assert.Equal(t, "insufficient_stock", checkoutFailureReason(fmt.Errorf("checkout: %w", stockErr)))
	assert.Equal(t, "product_vanished", checkoutFailureReason(fmt.Errorf("%w: abc", apperror.ErrProductVanished)))
	assert.Equal(t, "internal", checkoutFailureReason(errors.New("connection reset")))
}

func TestOrderItemData(t *testing.T) {
	productID := uuid.New()
	items := []models.OrderItem{
		{
			ProductID:   &productID,
			Quantity:    2,
			PriceAtTime: decimal.RequireFromString("10.00"),
		},
		{
			// product deleted since purchase; nothing to invalidate
			ProductID:   nil,
			Quantity:    1,
			PriceAtTime: decimal.RequireFromString("5.00"),
		},
	}

	data := orderItemData(items)

	assert.Len(t, data, 1)
	assert.Equal(t, productID, data[0].ProductID)
	assert.Equal(t, 2, data[0].Quantity)
	assert.True(t, data[0].PriceAtTime.Equal(decimal.RequireFromString("10.00")))
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	s := newTestStore(t)
	svc := NewOrderService(s, newTestPublisher(t))
	ctx := context.Background()

	// a cart id that never resolved
	_, err := svc.CreateFromCart(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	// a real cart holding no items
	cart, err := NewCartService(s).ResolveOrCreate(ctx, nil, nil)
	require.NoError(t, err)

	_, err = svc.CreateFromCart(ctx, cart.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	// neither attempt left an order behind
	orders, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
