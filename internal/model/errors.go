package model

import "errors"

var (
	ErrNotFound         = errors.New("product not found")
	ErrDuplicateSKU     = errors.New("a product with this SKU already exists")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCapacityExceeded = errors.New("quantity exceeds available stock")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)
