// Package register owns the catalog on behalf of the operator: product
// writes, sale completion and the events both produce.
package register

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/cart"
	"github.com/fairyhunter13/inventory-register-service/internal/invoice"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
	"github.com/fairyhunter13/inventory-register-service/internal/store"
)

// EventPublisher accepts events for asynchronous delivery.
type EventPublisher interface {
	Publish(ev model.Event) bool
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name      string
	SKU       string
	Category  string
	Price     decimal.Decimal
	Quantity  int
	Image     string
	CreatedAt time.Time
}

// Receipt is the outcome of a completed sale.
type Receipt struct {
	Sale    cart.Sale       `json:"sale"`
	Invoice invoice.Invoice `json:"invoice"`
	Alerts  []model.Event   `json:"alerts"`
}

// Service applies operator actions to the catalog and the invoice ledger.
type Service struct {
	catalog  store.Catalog
	invoices *invoice.Ledger
	events   EventPublisher
	actor    string
	now      func() time.Time
}

// NewService builds a Service. Events are attributed to actor.
func NewService(catalog store.Catalog, invoices *invoice.Ledger, events EventPublisher, actor string) *Service {
	return &Service{catalog: catalog, invoices: invoices, events: events, actor: actor, now: time.Now}
}

// Catalog returns the underlying catalog store.
func (s *Service) Catalog() store.Catalog { return s.catalog }

// Invoices returns the invoice ledger.
func (s *Service) Invoices() *invoice.Ledger { return s.invoices }

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", model.ErrInvalidProduct)
	case strings.TrimSpace(in.SKU) == "":
		return fmt.Errorf("%w: sku is required", model.ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0", model.ErrInvalidProduct)
	case in.Quantity < 0:
		return fmt.Errorf("%w: quantity must be >= 0", model.ErrInvalidProduct)
	}
	return nil
}

func (in ProductInput) apply(p model.Product) model.Product {
	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.TrimSpace(in.SKU)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.Image = in.Image
	return p
}

// CreateProduct adds a product. SKUs are unique ignoring case.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	p, err := s.catalog.Create(ctx, in.apply(model.Product{CreatedAt: in.CreatedAt}))
	if err != nil {
		return model.Product{}, err
	}
	s.publish(model.Event{Kind: model.EventProductCreated, ProductID: p.ID, Subject: p.Name, After: p.Quantity})
	obs.Logger.Info("product_created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// EditProduct replaces the editable fields of an existing product. A
// quantity edit that crosses a stock threshold raises the same alerts as a
// sale.
func (s *Service) EditProduct(ctx context.Context, id string, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	cur, err := s.catalog.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	p, err := s.catalog.Update(ctx, in.apply(cur))
	if err != nil {
		return model.Product{}, err
	}
	s.publish(model.Event{Kind: model.EventProductEdited, ProductID: p.ID, Subject: p.Name, Before: cur.Quantity, After: p.Quantity})
	for _, ev := range DetectTransitions([]model.QuantityChange{{ProductID: p.ID, Name: p.Name, Before: cur.Quantity, After: p.Quantity}}) {
		s.publish(ev)
	}
	obs.Logger.Info("product_edited", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// CompleteSale commits the cart, issues an invoice and raises the sale and
// stock alert events.
func (s *Service) CompleteSale(ctx context.Context, c *cart.Cart, customer string) (Receipt, error) {
	sale, err := c.Commit(ctx)
	if err != nil {
		return Receipt{}, err
	}
	inv := s.invoices.Issue(sale, customer)
	s.publish(model.Event{Kind: model.EventInvoiceCreated, Subject: inv.Customer, Ref: inv.Number, Amount: inv.Total})
	s.publish(model.Event{Kind: model.EventSaleCompleted, Subject: inv.Customer, Ref: inv.Number, Amount: sale.Total, Items: sale.Items()})
	alerts := DetectTransitions(sale.Changes)
	for i := range alerts {
		alerts[i] = s.stamp(alerts[i])
		s.publish(alerts[i])
	}
	obs.Logger.Info("sale_committed", "sale_id", sale.ID, "lines", len(sale.Lines), "total", sale.Total.String(),
		"invoice", inv.Number, "alerts", len(alerts))
	return Receipt{Sale: sale, Invoice: inv, Alerts: alerts}, nil
}

// PayInvoice marks an invoice paid.
func (s *Service) PayInvoice(_ context.Context, id string) (invoice.Invoice, error) {
	inv, changed, err := s.invoices.MarkPaid(id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if changed {
		s.publish(model.Event{Kind: model.EventInvoicePaid, Subject: inv.Customer, Ref: inv.Number, Amount: inv.Total})
	}
	return inv, nil
}

// DetectTransitions derives stock alerts from before/after quantities:
// LowStock when a product drops from at least the threshold to below it
// while still in stock, OutOfStock when it drops to zero.
func DetectTransitions(changes []model.QuantityChange) []model.Event {
	var out []model.Event
	for _, ch := range changes {
		ev := model.Event{ProductID: ch.ProductID, Subject: ch.Name, Before: ch.Before, After: ch.After}
		switch {
		case ch.Before > 0 && ch.After == 0:
			ev.Kind = model.EventOutOfStock
		case ch.Before >= model.LowStockThreshold && ch.After > 0 && ch.After < model.LowStockThreshold:
			ev.Kind = model.EventLowStock
		default:
			continue
		}
		out = append(out, ev)
	}
	return out
}

// stamp fills in the acting user and the event time when unset.
func (s *Service) stamp(ev model.Event) model.Event {
	if ev.Actor == "" {
		ev.Actor = s.actor
	}
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	return ev
}

func (s *Service) publish(ev model.Event) {
	ev = s.stamp(ev)
	if s.events == nil {
		return
	}
	if ok := s.events.Publish(ev); !ok {
		obs.Logger.Warn("event_dropped", "kind", string(ev.Kind), "reason", "intake_closed")
	}
}
