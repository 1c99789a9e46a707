package register

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/inventory-register-service/internal/cart"
	"github.com/fairyhunter13/inventory-register-service/internal/invoice"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/store"
)

type mockPublisher struct {
	events []model.Event
	closed bool
}

func (m *mockPublisher) Publish(ev model.Event) bool {
	if m.closed {
		return false
	}
	m.events = append(m.events, ev)
	return true
}

func (m *mockPublisher) kinds() []model.EventKind {
	out := make([]model.EventKind, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Kind
	}
	return out
}

func newService() (*Service, *mockPublisher) {
	pub := &mockPublisher{}
	return NewService(store.New(), invoice.NewLedger(), pub, "Admin"), pub
}

func input(name, sku string, qty int) ProductInput {
	return ProductInput{Name: name, SKU: sku, Category: "Tools", Price: decimal.RequireFromString("2.50"), Quantity: qty}
}

func TestRegisterService(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateProduct_PublishesEvent", func(t *testing.T) {
		svc, pub := newService()
		p, err := svc.CreateProduct(ctx, input("  Hammer ", "HM-1", 10))
		require.NoError(t, err)
		require.Equal(t, "Hammer", p.Name)
		require.NotEmpty(t, p.ID)
		require.Equal(t, []model.EventKind{model.EventProductCreated}, pub.kinds())
		require.Equal(t, "Admin", pub.events[0].Actor)
		require.Equal(t, p.ID, pub.events[0].ProductID)
	})

	t.Run("CreateProduct_Validation", func(t *testing.T) {
		svc, pub := newService()
		bad := []ProductInput{
			input("", "X", 1),
			input("Name", " ", 1),
			{Name: "N", SKU: "S", Price: decimal.NewFromInt(-1)},
			{Name: "N", SKU: "S", Quantity: -1},
		}
		for _, in := range bad {
			_, err := svc.CreateProduct(ctx, in)
			require.ErrorIs(t, err, model.ErrInvalidProduct)
		}
		require.Empty(t, pub.events)
	})

	t.Run("CreateProduct_DuplicateSKU", func(t *testing.T) {
		svc, pub := newService()
		_, err := svc.CreateProduct(ctx, input("A", "ABC-1", 1))
		require.NoError(t, err)
		_, err = svc.CreateProduct(ctx, input("B", "abc-1", 1))
		require.ErrorIs(t, err, model.ErrDuplicateSKU)
		require.Len(t, pub.events, 1)
	})

	t.Run("EditProduct_KeepsOwnSKUAndRaisesAlerts", func(t *testing.T) {
		svc, pub := newService()
		p, _ := svc.CreateProduct(ctx, input("A", "ABC-1", 50))
		pub.events = nil

		edited, err := svc.EditProduct(ctx, p.ID, input("A2", "abc-1", 10))
		require.NoError(t, err)
		require.Equal(t, "A2", edited.Name)
		require.Equal(t, p.CreatedAt, edited.CreatedAt)
		require.Equal(t, []model.EventKind{model.EventProductEdited, model.EventLowStock}, pub.kinds())
	})

	t.Run("EditProduct_Missing", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.EditProduct(ctx, "missing", input("A", "A", 1))
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("CompleteSale", func(t *testing.T) {
		svc, pub := newService()
		a, _ := svc.CreateProduct(ctx, input("A", "A-1", 5))
		b, _ := svc.CreateProduct(ctx, input("B", "B-1", 2))
		c, _ := svc.CreateProduct(ctx, input("C", "C-1", 41))
		pub.events = nil

		cc := cart.New(svc.Catalog())
		for i := 0; i < 3; i++ {
			_, _ = cc.Add(ctx, a.ID)
		}
		for i := 0; i < 2; i++ {
			_, _ = cc.Add(ctx, b.ID)
			_, _ = cc.Add(ctx, c.ID)
		}

		rc, err := svc.CompleteSale(ctx, cc, "Ada")
		require.NoError(t, err)
		require.Equal(t, "INV-0001", rc.Invoice.Number)
		require.True(t, rc.Sale.Total.Equal(decimal.RequireFromString("17.50")))
		require.Equal(t, []model.EventKind{
			model.EventInvoiceCreated, model.EventSaleCompleted, model.EventOutOfStock, model.EventLowStock,
		}, pub.kinds())
		require.Len(t, rc.Alerts, 2)
		require.Equal(t, b.ID, rc.Alerts[0].ProductID)
		require.Equal(t, c.ID, rc.Alerts[1].ProductID)
		require.Equal(t, 7, pub.events[1].Items)

		after, _ := svc.Catalog().Get(ctx, a.ID)
		require.Equal(t, 2, after.Quantity)
		require.Zero(t, cc.Len())
	})

	t.Run("CompleteSale_AlertsCarryActorAndTime", func(t *testing.T) {
		svc, pub := newService()
		saleAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return saleAt }
		p, _ := svc.CreateProduct(ctx, input("Rake", "R-1", 1))
		pub.events = nil

		cc := cart.New(svc.Catalog())
		_, _ = cc.Add(ctx, p.ID)
		rc, err := svc.CompleteSale(ctx, cc, "")
		require.NoError(t, err)
		require.Len(t, rc.Alerts, 1)
		require.Equal(t, "Admin", rc.Alerts[0].Actor)
		require.True(t, saleAt.Equal(rc.Alerts[0].At))
		published := pub.events[len(pub.events)-1]
		require.Equal(t, model.EventOutOfStock, published.Kind)
		require.Equal(t, rc.Alerts[0], published)
	})

	t.Run("CompleteSale_EmptyCart", func(t *testing.T) {
		svc, pub := newService()
		_, err := svc.CompleteSale(ctx, cart.New(svc.Catalog()), "")
		require.ErrorIs(t, err, model.ErrEmptyCart)
		require.Empty(t, pub.events)
		require.Empty(t, svc.Invoices().List(""))
	})

	t.Run("PayInvoice", func(t *testing.T) {
		svc, pub := newService()
		a, _ := svc.CreateProduct(ctx, input("A", "A-1", 5))
		cc := cart.New(svc.Catalog())
		_, _ = cc.Add(ctx, a.ID)
		rc, err := svc.CompleteSale(ctx, cc, "")
		require.NoError(t, err)
		pub.events = nil

		inv, err := svc.PayInvoice(ctx, rc.Invoice.ID)
		require.NoError(t, err)
		require.Equal(t, invoice.Paid, inv.Status)
		_, err = svc.PayInvoice(ctx, rc.Invoice.ID)
		require.NoError(t, err)
		require.Equal(t, []model.EventKind{model.EventInvoicePaid}, pub.kinds())

		_, err = svc.PayInvoice(ctx, "nope")
		require.ErrorIs(t, err, model.ErrInvoiceNotFound)
	})

	t.Run("ClosedPublisherDoesNotFailWrites", func(t *testing.T) {
		svc, pub := newService()
		pub.closed = true
		_, err := svc.CreateProduct(ctx, input("A", "A-1", 5))
		require.NoError(t, err)
	})
}

func TestDetectTransitions(t *testing.T) {
	changes := []model.QuantityChange{
		{ProductID: "low", Before: 40, After: 39},
		{ProductID: "still-in", Before: 80, After: 40},
		{ProductID: "already-low", Before: 30, After: 10},
		{ProductID: "out", Before: 30, After: 0},
		{ProductID: "in-to-out", Before: 45, After: 0},
		{ProductID: "was-out", Before: 0, After: 0},
		{ProductID: "restock", Before: 2, After: 60},
	}
	got := DetectTransitions(changes)
	require.Len(t, got, 3)
	require.Equal(t, model.Event{Kind: model.EventLowStock, ProductID: "low", Before: 40, After: 39}, got[0])
	require.Equal(t, model.EventOutOfStock, got[1].Kind)
	require.Equal(t, "out", got[1].ProductID)
	require.Equal(t, model.EventOutOfStock, got[2].Kind)
	require.Equal(t, "in-to-out", got[2].ProductID)
}
