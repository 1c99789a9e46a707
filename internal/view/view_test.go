package view

import (
	"fmt"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// catalog builds n products; every third one is low stock, every tenth is
// sold out, prices repeat every 7 products so there are ties.
func catalog(n int) []model.Product {
	out := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		qty := 100 + i
		if i%3 == 0 {
			qty = 5
		}
		if i%10 == 0 {
			qty = 0
		}
		cat := "Tools"
		if i%2 == 0 {
			cat = "Garden"
		}
		out = append(out, model.Product{
			ID:        fmt.Sprintf("p%02d", i),
			Name:      fmt.Sprintf("Product %02d", i),
			SKU:       fmt.Sprintf("SKU-%02d", i),
			Category:  cat,
			Price:     decimal.NewFromInt(int64(i%7 + 1)).Div(decimal.NewFromInt(4)),
			Quantity:  qty,
			CreatedAt: base.Add(time.Duration(n-i) * time.Hour),
		})
	}
	return out
}

func ids(rows []model.Product) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	products := []model.Product{
		{ID: "1", Name: "Garden Hose", SKU: "GH-1", Category: "Garden", Quantity: 50},
		{ID: "2", Name: "Claw Hammer", SKU: "HM-2", Category: "Tools", Quantity: 3},
		{ID: "3", Name: "Rake", SKU: "RK-3", Category: "Garden", Quantity: 0},
	}

	require.Equal(t, []string{"1", "3"}, ids(Filter(products, Params{Search: "garden"})), "category matches search")
	require.Equal(t, []string{"2"}, ids(Filter(products, Params{Search: "hm-"})), "sku matches search")
	require.Equal(t, []string{"2"}, ids(Filter(products, Params{Search: "HAMMER"})))
	require.Equal(t, []string{"1", "3"}, ids(Filter(products, Params{Category: "Garden"})))
	require.Equal(t, []string{"1", "2", "3"}, ids(Filter(products, Params{Category: All, Status: All})))
	require.Equal(t, []string{"3"}, ids(Filter(products, Params{Status: "Out of Stock"})))
	require.Equal(t, []string{"2"}, ids(Filter(products, Params{Status: string(model.LowStock)})))
	require.Equal(t, []string{"1"}, ids(Filter(products, Params{Status: string(model.InStock), Category: "Garden"})))
	require.Empty(t, Filter(products, Params{Status: "bogus"}))
}

func TestApplyEmptyResult(t *testing.T) {
	page := Apply(catalog(5), Params{Search: "no such thing"})
	require.True(t, page.Empty)
	require.Empty(t, page.Rows)
	require.NotNil(t, page.Rows)
	require.Equal(t, 0, page.PageCount)
	require.Equal(t, 1, page.Page)
}

func TestApplyPagination(t *testing.T) {
	products := catalog(45)
	p1 := Apply(products, Params{Page: 1})
	require.Equal(t, 3, p1.PageCount)
	require.Equal(t, 45, p1.Total)
	require.Len(t, p1.Rows, DefaultPageSize)
	require.Equal(t, "p00", p1.Rows[0].ID)

	p3 := Apply(products, Params{Page: 3})
	require.Len(t, p3.Rows, 5)
	require.Equal(t, "p40", p3.Rows[0].ID)

	p4 := Apply(products, Params{Page: 4})
	require.Empty(t, p4.Rows)
	require.False(t, p4.Empty)
}

func TestSortStable(t *testing.T) {
	products := catalog(50)
	asc := Apply(products, Params{SortKey: SortPrice, SortDir: Asc, PageSize: 100}).Rows
	desc := Apply(products, Params{SortKey: SortPrice, SortDir: Desc, PageSize: 100}).Rows
	require.Len(t, asc, 50)

	for i := 1; i < len(asc); i++ {
		require.True(t, asc[i-1].Price.LessThanOrEqual(asc[i].Price), spew.Sdump(asc[i-1], asc[i]))
		if asc[i-1].Price.Equal(asc[i].Price) {
			require.Less(t, asc[i-1].ID, asc[i].ID, "ties keep catalog order ascending")
		}
	}
	for i := 1; i < len(desc); i++ {
		require.True(t, desc[i-1].Price.GreaterThanOrEqual(desc[i].Price))
		if desc[i-1].Price.Equal(desc[i].Price) {
			require.Less(t, desc[i-1].ID, desc[i].ID, "ties keep catalog order descending")
		}
	}

	// desc is asc reversed group by group, each equal-price group kept intact
	groupsAsc := groupByPrice(asc)
	groupsDesc := groupByPrice(desc)
	require.Equal(t, len(groupsAsc), len(groupsDesc))
	for i := range groupsAsc {
		require.Equal(t, groupsAsc[i], groupsDesc[len(groupsDesc)-1-i])
	}

	resorted := append([]model.Product(nil), asc...)
	Sort(resorted, SortPrice, Asc)
	require.Equal(t, ids(asc), ids(resorted), "re-sorting by the same key keeps order")
}

func groupByPrice(rows []model.Product) [][]string {
	var out [][]string
	for i, r := range rows {
		if i == 0 || !rows[i-1].Price.Equal(r.Price) {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], r.ID)
	}
	return out
}

func TestSortKeys(t *testing.T) {
	products := []model.Product{
		{ID: "a", Name: "banana", Quantity: 3, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Name: "Apple", Quantity: 1, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "c", Name: "cherry", Quantity: 2, CreatedAt: base.Add(1 * time.Hour)},
	}
	sorted := func(key SortKey, dir SortDir) []string {
		rows := append([]model.Product(nil), products...)
		Sort(rows, key, dir)
		return ids(rows)
	}
	require.Equal(t, []string{"b", "a", "c"}, sorted(SortName, Asc))
	require.Equal(t, []string{"c", "a", "b"}, sorted(SortName, Desc))
	require.Equal(t, []string{"b", "c", "a"}, sorted(SortQuantity, Asc))
	require.Equal(t, []string{"c", "a", "b"}, sorted(SortDateAdded, Asc))
	require.Equal(t, []string{"b", "a", "c"}, sorted(SortDateAdded, Desc))
	require.Equal(t, []string{"a", "b", "c"}, sorted(SortNone, Desc))
}

func TestParseSort(t *testing.T) {
	k, err := ParseSortKey("dateAdded")
	require.NoError(t, err)
	require.Equal(t, SortDateAdded, k)
	_, err = ParseSortKey("weight")
	require.Error(t, err)

	d, err := ParseSortDir("DESC")
	require.NoError(t, err)
	require.Equal(t, Desc, d)
	_, err = ParseSortDir("sideways")
	require.Error(t, err)
}

func TestCategories(t *testing.T) {
	require.Equal(t, []string{"Garden", "Tools"}, Categories(catalog(6)))
	require.Empty(t, Categories(nil))
}
