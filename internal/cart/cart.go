// Package cart implements the register sale in progress: a stock-bounded set
// of lines that is committed against the catalog as a sale.
//
// Quantity requests that would leave a line outside 1..MaxQuantity, or add
// an unknown or sold-out product, are rejected without changing the cart.
// Mutators report whether they changed anything; they never return an error
// for such requests. Errors are reserved for catalog failures and for
// committing an empty cart.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

// Catalog is the part of the catalog store the cart needs.
type Catalog interface {
	Get(ctx context.Context, id string) (model.Product, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)
	ApplyQuantityDeltas(ctx context.Context, deltas []model.QuantityDelta) ([]model.QuantityChange, error)
}

// Line is one product in the cart. UnitPrice is captured when the line is
// created and does not follow later catalog price edits.
type Line struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"`
}

// Total is Quantity × UnitPrice.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale is an immutable committed cart.
type Sale struct {
	ID      string                 `json:"id"`
	Lines   []Line                 `json:"lines"`
	Changes []model.QuantityChange `json:"changes"`
	Total   decimal.Decimal        `json:"total"`
	At      time.Time              `json:"at"`
}

// Items is the number of units sold.
func (s Sale) Items() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Cart is not safe for concurrent use.
type Cart struct {
	catalog Catalog
	lines   map[string]*Line
	order   []string
	query   string
	now     func() time.Time
}

// New returns an empty cart reading stock from catalog.
func New(catalog Catalog) *Cart {
	return &Cart{catalog: catalog, lines: make(map[string]*Line), now: time.Now}
}

// SetQuery stores the operator's pending search input.
func (c *Cart) SetQuery(q string) { c.query = q }

// Query returns the pending search input.
func (c *Cart) Query() string { return c.query }

// Add puts one unit of the product in the cart. The pending query is
// cleared on every call.
func (c *Cart) Add(ctx context.Context, productID string) (bool, error) {
	c.query = ""
	p, err := c.catalog.Get(ctx, productID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cart add %q: %w", productID, err)
	}
	return c.add(p), nil
}

func (c *Cart) add(p model.Product) bool {
	if p.Quantity <= 0 {
		return false
	}
	if l, ok := c.lines[p.ID]; ok {
		l.MaxQuantity = p.Quantity
		if l.Quantity+1 > p.Quantity {
			return false
		}
		l.Quantity++
		return true
	}
	c.lines[p.ID] = &Line{
		ProductID:   p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		UnitPrice:   p.Price,
		Quantity:    1,
		MaxQuantity: p.Quantity,
	}
	c.order = append(c.order, p.ID)
	return true
}

// Scan handles raw scanner or search-box input. Input matching exactly one
// product SKU, ignoring case, with stock on hand is added directly. Any other
// input is left as the pending query.
func (c *Cart) Scan(ctx context.Context, raw string) (bool, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return false, nil
	}
	p, err := c.catalog.FindBySKU(ctx, code)
	if errors.Is(err, model.ErrNotFound) || (err == nil && p.Quantity <= 0) {
		c.query = raw
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cart scan %q: %w", code, err)
	}
	c.query = ""
	return c.add(p), nil
}

// ChangeQuantity moves a line's quantity by delta. Increases past
// MaxQuantity and decreases below 1 are rejected; a line is only dropped
// through Remove. A decrease is always allowed otherwise, so a line left
// above a MaxQuantity that shrank with the stock can be brought back down.
func (c *Cart) ChangeQuantity(productID string, delta int) bool {
	l, ok := c.lines[productID]
	if !ok || delta == 0 {
		return false
	}
	n := l.Quantity + delta
	if n < 1 || (delta > 0 && n > l.MaxQuantity) {
		return false
	}
	l.Quantity = n
	return true
}

// Remove deletes the line for productID.
func (c *Cart) Remove(productID string) bool {
	if _, ok := c.lines[productID]; !ok {
		return false
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Lines returns a copy of the lines in the order they were added.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Len is the number of lines.
func (c *Cart) Len() int { return len(c.order) }

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Total equals Subtotal; there is no tax or discount.
func (c *Cart) Total() decimal.Decimal { return c.Subtotal() }

// Clear empties the cart and the pending query.
func (c *Cart) Clear() {
	c.lines = make(map[string]*Line)
	c.order = nil
	c.query = ""
}

// Commit decrements catalog stock by each line's quantity, floored at zero,
// and empties the cart. Stock is re-read at commit time; if it fell below the
// line quantity since the line was added the product simply ends at zero.
func (c *Cart) Commit(ctx context.Context) (Sale, error) {
	if len(c.order) == 0 {
		return Sale{}, model.ErrEmptyCart
	}
	lines := c.Lines()
	deltas := make([]model.QuantityDelta, 0, len(lines))
	for _, l := range lines {
		p, err := c.catalog.Get(ctx, l.ProductID)
		if err != nil {
			return Sale{}, fmt.Errorf("cart commit: %w", err)
		}
		deltas = append(deltas, model.QuantityDelta{ProductID: l.ProductID, Quantity: max(p.Quantity-l.Quantity, 0)})
	}
	changes, err := c.catalog.ApplyQuantityDeltas(ctx, deltas)
	if err != nil {
		return Sale{}, fmt.Errorf("cart commit: %w", err)
	}
	sale := Sale{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Lines:   lines,
		Changes: changes,
		Total:   c.Total(),
		At:      c.now().UTC(),
	}
	c.Clear()
	return sale, nil
}
