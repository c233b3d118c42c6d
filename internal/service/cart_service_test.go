package service

import (
	"context"
	"testing"

	"shop-service/internal/apperror"
	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStock(t *testing.T) {
	product := &models.Product{Name: "widget", Stock: 5}

	assert.NoError(t, checkStock(product, 0, 5))
	assert.NoError(t, checkStock(product, 2, 3))
	assert.NoError(t, checkStock(product, 0, 0))
}

func TestCheckStockRejectsAggregateOverflow(t *testing.T) {
	product := &models.Product{Name: "widget", Stock: 5}

	// 3 already in the cart, adding 3 more exceeds stock 5
	err := checkStock(product, 3, 3)

	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "widget", stockErr.ProductName)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 6, stockErr.Requested)
}

func TestCheckStockZeroStock(t *testing.T) {
	product := &models.Product{Name: "widget", Stock: 0}

	err := checkStock(product, 0, 1)

	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
}

func TestUpdateItemQuantityZeroRemovesItem(t *testing.T) {
	s := newTestStore(t)
	svc := NewCartService(s)
	ctx := context.Background()

	product := seedProduct(t, s, "10.00", 5)

	cart, err := svc.AddItem(ctx, nil, nil, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	itemID := cart.Items[0].ID

	updated, err := svc.UpdateItemQuantity(ctx, cart.ID, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, updated.Items)
	assert.True(t, updated.Total.IsZero())

	// the row is gone, not zeroed in place
	_, err = s.GetCartItem(ctx, cart.ID, itemID)
	assert.ErrorIs(t, err, apperror.ErrItemNotFound)

	// a cart emptied through RemoveItem ends in the same state
	other, err := svc.AddItem(ctx, nil, nil, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, other.Items, 1)

	removed, err := svc.RemoveItem(ctx, other.ID, other.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Items)
	assert.True(t, removed.Total.IsZero())
}
