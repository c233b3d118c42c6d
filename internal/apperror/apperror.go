package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the shop domain. Handlers map these onto HTTP codes;
// services raise them at the point of detection and never swallow them.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidStatus   = errors.New("invalid order status")

	// ErrProductVanished covers the race where a product referenced by a
	// cart item is deleted before checkout completes.
	ErrProductVanished = errors.New("product no longer exists")
)

// InsufficientStockError names the offending product so the client can act
// on it (retry with a smaller quantity, drop the line).
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductVanished)
}

// IsClientError reports whether err should surface as a 4xx rather than an
// opaque internal failure.
func IsClientError(err error) bool {
	var stockErr *InsufficientStockError
	return IsNotFound(err) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.As(err, &stockErr)
}
