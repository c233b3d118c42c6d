package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderStatus(t *testing.T) {
	tests := []struct {
		in        string
		canonical string
		ok        bool
	}{
		{"PENDING", "PENDING", true},
		{"completed", "COMPLETED", true},
		{"  shipped ", "SHIPPED", true},
		{"Canceled", "CANCELED", true},
		{"refunded", "REFUNDED", true},
		{"processing", "PROCESSING", true},
		{"bogus", "BOGUS", false},
		{"CANCELLED", "CANCELLED", false}, // British spelling is not in the contract
		{"", "", false},
	}

	for _, tt := range tests {
		canonical, ok := NormalizeOrderStatus(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.canonical, canonical, "input %q", tt.in)
		}
	}
}

func TestCartTotal(t *testing.T) {
	items := []CartItem{
		{Quantity: 3, PriceAtTime: decimal.RequireFromString("10.00")},
		{Quantity: 1, PriceAtTime: decimal.RequireFromString("0.99")},
	}

	total := CartTotal(items)
	assert.True(t, total.Equal(decimal.RequireFromString("30.99")), "got %s", total)
}

func TestCartTotalEmpty(t *testing.T) {
	assert.True(t, CartTotal(nil).IsZero())
}

func TestCartTotalUsesFrozenPrices(t *testing.T) {
	// the line price, not the product's live price, drives the total
	live := Product{Price: decimal.RequireFromString("99.99")}
	items := []CartItem{
		{Quantity: 2, PriceAtTime: decimal.RequireFromString("10.00"), Product: &live},
	}

	assert.True(t, CartTotal(items).Equal(decimal.RequireFromString("20.00")))
}
