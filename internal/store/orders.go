package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-service/internal/apperror"
	"shop-service/internal/models"

	"github.com/google/uuid"
)

// GetOrderByID retrieves an order with items and products
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// ListOrders retrieves orders newest first, optionally filtered by owner,
// each with items and products
func (s *Store) ListOrders(ctx context.Context, userID *uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	var err error
	if userID != nil {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", *userID)
	} else {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateOrderStatus overwrites the status field
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrOrderNotFound, orderID)
	}
	return nil
}

func (s *Store) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY position", orderID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for i := range items {
		if items[i].ProductID != nil {
			ids = append(ids, *items[i].ProductID)
		}
	}

	products, err := s.getProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID != nil {
			items[i].Product = products[*items[i].ProductID]
		}
	}
	return items, nil
}
