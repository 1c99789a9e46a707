package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the caseless form of s used for SKU identity and search.
// A Caser is stateful, so a fresh one is built per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// SKUKey is the normalized SKU used for uniqueness and exact-match lookup.
func SKUKey(sku string) string {
	return Fold(strings.TrimSpace(sku))
}
