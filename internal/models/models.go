package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Cart represents a shopper's mutable cart. The row outlives checkout:
// conversion empties the items but keeps the cart.
type Cart struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	Items     []CartItem `db:"-" json:"items"`

	// Total is Σ price_at_time × quantity over the current items, computed
	// on read and never stored.
	Total decimal.Decimal `db:"-" json:"total"`
}

// CartItem is one product line in a cart. PriceAtTime is stamped from the
// product's price when the line is first added and never re-stamped.
type CartItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CartID      uuid.UUID       `db:"cart_id" json:"cart_id"`
	ProductID   uuid.UUID       `db:"product_id" json:"product_id"`
	Quantity    int             `db:"quantity" json:"quantity"`
	PriceAtTime decimal.Decimal `db:"price_at_time" json:"price_at_time"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Product     *Product        `db:"-" json:"product,omitempty"`
}

// Order represents a completed purchase. Immutable except for Status.
type Order struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	Items       []OrderItem     `db:"-" json:"items"`
}

// OrderItem is a frozen copy of a cart line at purchase time. ProductID is
// nullable so deleting a product never invalidates order history. Position
// preserves the cart's insertion order across re-reads.
type OrderItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID   *uuid.UUID      `db:"product_id" json:"product_id,omitempty"`
	Position    int             `db:"position" json:"-"`
	Quantity    int             `db:"quantity" json:"quantity"`
	PriceAtTime decimal.Decimal `db:"price_at_time" json:"price_at_time"`
	Product     *Product        `db:"-" json:"product,omitempty"`
}

// Order statuses
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCanceled   = "CANCELED"
	OrderStatusRefunded   = "REFUNDED"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusCompleted:  {},
	OrderStatusCanceled:   {},
	OrderStatusRefunded:   {},
}

// NormalizeOrderStatus maps a case-insensitive status string to its canonical
// upper-case form. ok is false when the value is outside the enumeration.
func NormalizeOrderStatus(status string) (string, bool) {
	canonical := strings.ToUpper(strings.TrimSpace(status))
	_, ok := orderStatuses[canonical]
	return canonical, ok
}

// CartTotal computes the cart total from frozen line prices.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.PriceAtTime.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
