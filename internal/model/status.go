package model

import "fmt"

// LowStockThreshold is the quantity below which an item with stock is low.
const LowStockThreshold = 40

// StockStatus is the three-valued stock classification of a quantity.
type StockStatus string

const (
	OutOfStock StockStatus = "out_of_stock"
	LowStock   StockStatus = "low_stock"
	InStock    StockStatus = "in_stock"
)

// StatusFor classifies a quantity on hand.
func StatusFor(qty int) StockStatus {
	switch {
	case qty <= 0:
		return OutOfStock
	case qty < LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// ParseStockStatus accepts the wire names as well as the dashboard labels.
func ParseStockStatus(s string) (StockStatus, error) {
	switch s {
	case "out_of_stock", "Out of Stock", "OutOfStock":
		return OutOfStock, nil
	case "low_stock", "Low Stock", "LowStock":
		return LowStock, nil
	case "in_stock", "In Stock", "InStock":
		return InStock, nil
	}
	return "", fmt.Errorf("unknown stock status %q", s)
}

// Label is the human readable form used in messages.
func (s StockStatus) Label() string {
	switch s {
	case OutOfStock:
		return "Out of Stock"
	case LowStock:
		return "Low Stock"
	case InStock:
		return "In Stock"
	}
	return string(s)
}
