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

// CreateCart inserts a new empty cart
func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	query := `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query, cart.ID, cart.UserID).
		Scan(&cart.CreatedAt, &cart.UpdatedAt)
}

// GetCartWithItems retrieves a cart with its items ordered by creation time,
// products attached
func (s *Store) GetCartWithItems(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart, "SELECT * FROM carts WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrCartNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	items := []models.CartItem{}
	err = s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC", id)
	if err != nil {
		return nil, err
	}

	if err := s.attachCartProducts(ctx, items); err != nil {
		return nil, err
	}

	cart.Items = items
	return &cart, nil
}

// GetCartItem retrieves one item scoped to a cart
func (s *Store) GetCartItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE id = $1 AND cart_id = $2", itemID, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartItemByProduct retrieves the item for a (cart, product) pair, or nil
// when the product is not in the cart yet
func (s *Store) GetCartItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateCartItem inserts a new cart line. The unique (cart_id, product_id)
// constraint guards against duplicate lines for one product.
func (s *Store) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, price_at_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return s.db.QueryRowxContext(ctx, query,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.PriceAtTime).
		Scan(&item.CreatedAt)
}

// UpdateCartItemQuantity overwrites an item's quantity in place
func (s *Store) UpdateCartItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, itemID)
	return err
}

// DeleteCartItem removes a single item
func (s *Store) DeleteCartItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", itemID)
	return err
}

// DeleteCartItems empties a cart without deleting the cart row
func (s *Store) DeleteCartItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return err
}

// TouchCart bumps the cart's updated_at timestamp
func (s *Store) TouchCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID)
	return err
}

func (s *Store) attachCartProducts(ctx context.Context, items []models.CartItem) error {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ProductID
	}

	products, err := s.getProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].Product = products[items[i].ProductID]
	}
	return nil
}
