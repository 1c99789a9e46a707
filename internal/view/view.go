// Package view turns the catalog into filtered, sorted, paginated pages for
// the inventory listing.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

// DefaultPageSize is the number of rows per inventory page.
const DefaultPageSize = 20

// All disables the category or status filter.
const All = "All"

// SortKey names the column the listing is ordered by.
type SortKey string

const (
	SortNone      SortKey = ""
	SortName      SortKey = "name"
	SortPrice     SortKey = "price"
	SortQuantity  SortKey = "quantity"
	SortDateAdded SortKey = "date_added"
)

// SortDir is the sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ParseSortKey accepts the wire names plus the dashboard column ids.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case "":
		return SortNone, nil
	case "name":
		return SortName, nil
	case "price":
		return SortPrice, nil
	case "quantity", "qty", "stock":
		return SortQuantity, nil
	case "date_added", "dateadded", "date", "created_at":
		return SortDateAdded, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

// ParseSortDir accepts asc or desc. Empty means asc.
func ParseSortDir(s string) (SortDir, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return Asc, fmt.Errorf("unknown sort direction %q", s)
}

// Params selects a page of the catalog. Empty Category or Status, or All,
// match everything.
type Params struct {
	Search   string  `json:"search"`
	Category string  `json:"category"`
	Status   string  `json:"status"`
	SortKey  SortKey `json:"sort_key"`
	SortDir  SortDir `json:"sort_dir"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// Page is one page of rows plus pagination metadata. Empty is set when no
// product matched the filters.
type Page struct {
	Rows      []model.Product `json:"rows"`
	Page      int             `json:"page"`
	PageCount int             `json:"page_count"`
	PageSize  int             `json:"page_size"`
	Total     int             `json:"total"`
	Empty     bool            `json:"empty"`
}

func (p Params) pageSize() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// sameQuery reports whether p and o select the same ordered row set.
func (p Params) sameQuery(o Params) bool {
	return p.Search == o.Search && p.Category == o.Category && p.Status == o.Status &&
		p.SortKey == o.SortKey && p.SortDir == o.SortDir && p.pageSize() == o.pageSize()
}

// Filter returns the products matching search, category and status, in
// catalog order.
func Filter(products []model.Product, p Params) []model.Product {
	needle := model.Fold(strings.TrimSpace(p.Search))
	var status model.StockStatus
	if p.Status != "" && p.Status != All {
		s, err := model.ParseStockStatus(p.Status)
		if err != nil {
			return []model.Product{}
		}
		status = s
	}
	out := make([]model.Product, 0, len(products))
	for _, pr := range products {
		if needle != "" && !strings.Contains(model.Fold(pr.Name), needle) &&
			!strings.Contains(model.Fold(pr.SKU), needle) &&
			!strings.Contains(model.Fold(pr.Category), needle) {
			continue
		}
		if p.Category != "" && p.Category != All && pr.Category != p.Category {
			continue
		}
		if status != "" && pr.Status() != status {
			continue
		}
		out = append(out, pr)
	}
	return out
}

func compareBy(key SortKey) func(a, b model.Product) int {
	switch key {
	case SortName:
		return func(a, b model.Product) int { return strings.Compare(model.Fold(a.Name), model.Fold(b.Name)) }
	case SortPrice:
		return func(a, b model.Product) int { return a.Price.Cmp(b.Price) }
	case SortQuantity:
		return func(a, b model.Product) int { return cmp.Compare(a.Quantity, b.Quantity) }
	case SortDateAdded:
		return func(a, b model.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return nil
}

// Sort orders products in place. The sort is stable in both directions:
// rows with equal keys keep their catalog order.
func Sort(products []model.Product, key SortKey, dir SortDir) {
	less := compareBy(key)
	if less == nil {
		return
	}
	if dir == Desc {
		slices.SortStableFunc(products, func(a, b model.Product) int { return less(b, a) })
		return
	}
	slices.SortStableFunc(products, less)
}

// PageCount is ceil(total / size).
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Apply runs filter, sort and pagination. A page below 1 is read as 1; a
// page past the end yields no rows.
func Apply(products []model.Product, p Params) Page {
	rows := Filter(products, p)
	Sort(rows, p.SortKey, p.SortDir)
	size := p.pageSize()
	page := max(p.Page, 1)
	out := Page{
		Page:      page,
		PageCount: PageCount(len(rows), size),
		PageSize:  size,
		Total:     len(rows),
		Empty:     len(rows) == 0,
		Rows:      []model.Product{},
	}
	start := (page - 1) * size
	if start < len(rows) {
		out.Rows = rows[start:min(start+size, len(rows))]
	}
	return out
}

// Categories lists the distinct categories in the catalog, sorted.
func Categories(products []model.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}
