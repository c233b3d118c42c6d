package service

import (
	"context"
	"errors"

	"shop-service/internal/apperror"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService handles cart mutations. Every mutation validates quantities
// against the product's live stock, but places no reservation on it; the
// checkout transaction re-validates under locks.
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ResolveOrCreate returns the cart for cartID, or a fresh empty cart when
// cartID is absent or does not resolve. It never fails on an unknown id.
func (s *CartService) ResolveOrCreate(ctx context.Context, cartID *uuid.UUID, userID *uuid.UUID) (*models.Cart, error) {
	if cartID != nil {
		cart, err := s.store.GetCartWithItems(ctx, *cartID)
		if err == nil {
			cart.Total = models.CartTotal(cart.Items)
			return cart, nil
		}
		if !errors.Is(err, apperror.ErrCartNotFound) {
			return nil, err
		}
	}

	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	if err := s.store.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}

	s.logger.Info("Cart created", zap.String("cart_id", cart.ID.String()))
	return cart, nil
}

// AddItem adds quantity units of a product to the cart, creating the cart
// lazily when needed. A repeat add increases the existing line's quantity;
// the line's price is stamped from the product's current price only on the
// first add.
func (s *CartService) AddItem(ctx context.Context, cartID *uuid.UUID, userID *uuid.UUID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	// Stock checks read the store directly: the product cache may lag
	// behind checkouts.
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.ResolveOrCreate(ctx, cartID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetCartItemByProduct(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}

	existingQty := 0
	if existing != nil {
		existingQty = existing.Quantity
	}

	if err := checkStock(product, existingQty, quantity); err != nil {
		util.CartStockRejectionsTotal.Inc()
		return nil, err
	}

	if existing != nil {
		if err := s.store.UpdateCartItemQuantity(ctx, existing.ID, existingQty+quantity); err != nil {
			return nil, err
		}
	} else {
		item := &models.CartItem{
			ID:          uuid.New(),
			CartID:      cart.ID,
			ProductID:   productID,
			Quantity:    quantity,
			PriceAtTime: product.Price,
		}
		if err := s.store.CreateCartItem(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := s.store.TouchCart(ctx, cart.ID); err != nil {
		s.logger.Warn("Failed to touch cart", zap.Error(err))
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return s.GetCart(ctx, cart.ID)
}

// UpdateItemQuantity overwrites an item's quantity. Zero removes the item.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateItemQuantity")
	defer span.End()

	if _, err := s.store.GetCartWithItems(ctx, cartID); err != nil {
		return nil, err
	}

	item, err := s.store.GetCartItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		if err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
			return nil, err
		}
	} else {
		product, err := s.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if err := checkStock(product, 0, quantity); err != nil {
			util.CartStockRejectionsTotal.Inc()
			return nil, err
		}
		if err := s.store.UpdateCartItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, err
		}
	}

	if err := s.store.TouchCart(ctx, cartID); err != nil {
		s.logger.Warn("Failed to touch cart", zap.Error(err))
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return s.GetCart(ctx, cartID)
}

// RemoveItem deletes a single item from the cart
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	if _, err := s.store.GetCartWithItems(ctx, cartID); err != nil {
		return nil, err
	}

	item, err := s.store.GetCartItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return s.GetCart(ctx, cartID)
}

// Clear deletes all items; the cart row persists
func (s *CartService) Clear(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Clear")
	defer span.End()

	if _, err := s.store.GetCartWithItems(ctx, cartID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteCartItems(ctx, cartID); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return s.GetCart(ctx, cartID)
}

// GetCart retrieves the cart with its computed total
func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.store.GetCartWithItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Total = models.CartTotal(cart.Items)
	return cart, nil
}

// checkStock validates that a cart can hold existing+requested units of the
// product. The error names the product and reports the aggregate quantity.
func checkStock(product *models.Product, existing, requested int) error {
	total := existing + requested
	if total > product.Stock {
		return &apperror.InsufficientStockError{
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   total,
		}
	}
	return nil
}
