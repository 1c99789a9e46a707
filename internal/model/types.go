// Package model defines domain types used by the service.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Its stock status is derived from Quantity on
// every read and is never stored.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	Image     string          `json:"image,omitempty"`
}

// Status returns the stock status for the product's current quantity.
func (p Product) Status() StockStatus { return StatusFor(p.Quantity) }

// MarshalJSON adds the derived status to the encoded product.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Status StockStatus `json:"status"`
	}{plain: plain(p), Status: p.Status()})
}

// QuantityDelta sets a product's quantity on hand to an absolute value.
type QuantityDelta struct {
	ProductID string
	Quantity  int
}

// QuantityChange records a product's quantity before and after a mutation.
type QuantityChange struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
}
