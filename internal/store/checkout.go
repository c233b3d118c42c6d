package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"shop-service/internal/apperror"
	"shop-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderFromCart converts the cart's items into a persisted order in a
// single transaction: re-fetch every product under a row lock, re-validate
// stock against the transactional snapshot, insert the order and its frozen
// line items, decrement stock, and empty the cart. Any failure rolls the
// whole conversion back; no partial effect is ever visible.
//
// Stock was already checked when the items entered the cart, but that check
// places no reservation, so concurrent checkouts may have drained stock in
// the meantime. The FOR UPDATE lock here serializes conversions touching the
// same product row.
func (s *Store) CreateOrderFromCart(ctx context.Context, cart *models.Cart, userID *uuid.UUID) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Lock product rows in ascending id order so two conversions over
	// overlapping products cannot deadlock each other.
	locked := make([]models.CartItem, len(cart.Items))
	copy(locked, cart.Items)
	sort.Slice(locked, func(i, j int) bool {
		return bytes.Compare(locked[i].ProductID[:], locked[j].ProductID[:]) < 0
	})

	total := decimal.Zero
	products := make(map[uuid.UUID]*models.Product, len(locked))

	for _, item := range locked {
		var product models.Product
		err := tx.GetContext(ctx, &product,
			"SELECT * FROM products WHERE id = $1 FOR UPDATE", item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperror.ErrProductVanished, item.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock product %s: %w", item.ProductID, err)
		}

		if product.Stock < item.Quantity {
			return nil, &apperror.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
		}

		// Totals use the cart's frozen prices, not the live product price.
		total = total.Add(item.PriceAtTime.Mul(decimal.NewFromInt(int64(item.Quantity))))
		products[product.ID] = &product
	}

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.TotalAmount, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	// Order lines keep the cart's insertion order; the persisted position
	// makes that order stable across re-reads.
	for i, item := range cart.Items {
		productID := item.ProductID
		orderItem := models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			Position:    i,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, position, quantity, price_at_time)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderItem.ID, orderItem.OrderID, orderItem.ProductID,
			orderItem.Position, orderItem.Quantity, orderItem.PriceAtTime)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}

		order.Items = append(order.Items, orderItem)
	}

	for _, item := range locked {
		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
			item.Quantity, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
		}
	}

	// Empty the cart; the cart row itself persists.
	if _, err = tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "UPDATE carts SET updated_at = NOW() WHERE id = $1", cart.ID); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	for i := range order.Items {
		if product, ok := products[*order.Items[i].ProductID]; ok {
			product.Stock -= order.Items[i].Quantity
			order.Items[i].Product = product
		}
	}
	return order, nil
}
