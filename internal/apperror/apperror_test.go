package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrCartNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("%w: abc", ErrProductNotFound)))
	assert.True(t, IsNotFound(ErrProductVanished))
	assert.False(t, IsNotFound(ErrEmptyCart))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrEmptyCart))
	assert.True(t, IsClientError(ErrInvalidStatus))
	assert.True(t, IsClientError(ErrOrderNotFound))
	assert.True(t, IsClientError(&InsufficientStockError{ProductName: "x"}))
	assert.True(t, IsClientError(fmt.Errorf("wrapped: %w", &InsufficientStockError{})))
	assert.False(t, IsClientError(errors.New("db gone")))
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{ProductName: "widget", Available: 2, Requested: 5}
	assert.Contains(t, err.Error(), `"widget"`)
	assert.Contains(t, err.Error(), "available 2")
	assert.Contains(t, err.Error(), "requested 5")
}
