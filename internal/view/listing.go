package view

import "github.com/fairyhunter13/inventory-register-service/internal/model"

// Listing is the stateful inventory table: current filters, sort and page.
// Any change to the filters or sort moves back to page 1; navigating outside
// the available pages leaves the current page unchanged.
type Listing struct {
	params Params
}

// NewListing starts on page 1 with no filters. A pageSize of zero or less
// uses DefaultPageSize.
func NewListing(pageSize int) *Listing {
	return &Listing{params: Params{Page: 1, PageSize: pageSize, SortDir: Asc}}
}

// Params returns the current parameters.
func (l *Listing) Params() Params { return l.params }

func (l *Listing) change(next Params) {
	if next.SortDir == "" {
		next.SortDir = Asc
	}
	next.Page = l.params.Page
	if !next.sameQuery(l.params) {
		next.Page = 1
	}
	l.params = next
}

// SetSearch sets the free-text search.
func (l *Listing) SetSearch(s string) {
	next := l.params
	next.Search = s
	l.change(next)
}

// SetCategory sets the category filter; empty or All matches every category.
func (l *Listing) SetCategory(c string) {
	next := l.params
	next.Category = c
	l.change(next)
}

// SetStatus sets the stock status filter.
func (l *Listing) SetStatus(s string) {
	next := l.params
	next.Status = s
	l.change(next)
}

// SetSort sets the sort column and direction.
func (l *Listing) SetSort(key SortKey, dir SortDir) {
	next := l.params
	next.SortKey, next.SortDir = key, dir
	l.change(next)
}

// GoTo moves to page n if it exists for the current filters and reports
// whether the page changed.
func (l *Listing) GoTo(products []model.Product, n int) bool {
	count := PageCount(len(Filter(products, l.params)), l.params.pageSize())
	if n < 1 || n > count || n == l.params.Page {
		return false
	}
	l.params.Page = n
	return true
}

// Update applies a full parameter set: filter and sort first, then the
// requested page as navigation. A zero Page keeps the current page.
func (l *Listing) Update(products []model.Product, next Params) Page {
	page := next.Page
	if next.PageSize == 0 {
		next.PageSize = l.params.PageSize
	}
	l.change(next)
	if page != 0 {
		l.GoTo(products, page)
	}
	return l.Page(products)
}

// Page renders the current page. When the catalog shrank under a retained
// page number, the listing moves to the last page that still exists.
func (l *Listing) Page(products []model.Product) Page {
	pg := Apply(products, l.params)
	if last := max(pg.PageCount, 1); pg.Page > last {
		l.params.Page = last
		pg = Apply(products, l.params)
	}
	return pg
}
