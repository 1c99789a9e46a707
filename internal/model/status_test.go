package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		qty  int
		want StockStatus
	}{
		{0, OutOfStock},
		{-3, OutOfStock},
		{1, LowStock},
		{39, LowStock},
		{40, InStock},
		{500, InStock},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StatusFor(tc.qty), "qty=%d", tc.qty)
	}
}

func TestProductStatusTracksQuantity(t *testing.T) {
	catalog := []Product{{ID: "1", Quantity: 0}, {ID: "2", Quantity: 39}, {ID: "3", Quantity: 40}}
	require.Equal(t, OutOfStock, catalog[0].Status())
	require.Equal(t, LowStock, catalog[1].Status())
	require.Equal(t, InStock, catalog[2].Status())

	catalog[2].Quantity = 12
	require.Equal(t, LowStock, catalog[2].Status())
}

func TestParseStockStatus(t *testing.T) {
	s, err := ParseStockStatus("Low Stock")
	require.NoError(t, err)
	require.Equal(t, LowStock, s)

	s, err = ParseStockStatus("out_of_stock")
	require.NoError(t, err)
	require.Equal(t, OutOfStock, s)

	_, err = ParseStockStatus("plenty")
	require.Error(t, err)
}

func TestProductJSONIncludesStatus(t *testing.T) {
	p := Product{ID: "p1", Name: "Mouse", SKU: "MS-1", Price: decimal.RequireFromString("12.50"), Quantity: 3}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.Equal(t, "low_stock", m["status"])
	require.Equal(t, "12.5", m["price"])
	require.Equal(t, "MS-1", m["sku"])
}

func TestSKUKeyIsCaseInsensitive(t *testing.T) {
	require.Equal(t, SKUKey("ABC-1"), SKUKey("abc-1"))
	require.Equal(t, SKUKey(" Abc-1 "), SKUKey("aBC-1"))
	require.NotEqual(t, SKUKey("ABC-1"), SKUKey("ABC-2"))
}
