// Package invoice keeps the invoices issued for committed sales.
package invoice

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/cart"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

// Status is the payment state of an invoice.
type Status string

const (
	Pending Status = "pending"
	Paid    Status = "paid"
)

// DefaultCustomer names invoices issued without a customer.
const DefaultCustomer = "Walk-in customer"

// Invoice bills one committed sale.
type Invoice struct {
	ID       string          `json:"id"`
	Number   string          `json:"number"`
	SaleID   string          `json:"sale_id"`
	Customer string          `json:"customer"`
	Lines    []cart.Line     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Status   Status          `json:"status"`
	IssuedAt time.Time       `json:"issued_at"`
	PaidAt   *time.Time      `json:"paid_at,omitempty"`
}

// Ledger numbers invoices sequentially from INV-0001.
type Ledger struct {
	mu       sync.RWMutex
	invoices []Invoice
	byID     map[string]int
	now      func() time.Time
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]int), now: time.Now}
}

// Issue records a pending invoice for the sale.
func (l *Ledger) Issue(sale cart.Sale, customer string) Invoice {
	if customer == "" {
		customer = DefaultCustomer
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	inv := Invoice{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Number:   fmt.Sprintf("INV-%04d", len(l.invoices)+1),
		SaleID:   sale.ID,
		Customer: customer,
		Lines:    slices.Clone(sale.Lines),
		Total:    sale.Total,
		Status:   Pending,
		IssuedAt: l.now().UTC(),
	}
	l.byID[inv.ID] = len(l.invoices)
	l.invoices = append(l.invoices, inv)
	return inv
}

// MarkPaid settles an invoice. Paying a paid invoice changes nothing; the
// bool reports whether the status changed.
func (l *Ledger) MarkPaid(id string) (Invoice, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.byID[id]
	if !ok {
		return Invoice{}, false, fmt.Errorf("pay %q: %w", id, model.ErrInvoiceNotFound)
	}
	inv := &l.invoices[i]
	if inv.Status == Paid {
		return *inv, false, nil
	}
	paidAt := l.now().UTC()
	inv.Status, inv.PaidAt = Paid, &paidAt
	return *inv, true, nil
}

// Get returns the invoice with id or model.ErrInvoiceNotFound.
func (l *Ledger) Get(id string) (Invoice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return Invoice{}, fmt.Errorf("get %q: %w", id, model.ErrInvoiceNotFound)
	}
	return l.invoices[i], nil
}

// List returns invoices newest first, optionally only those with status.
func (l *Ledger) List(status Status) []Invoice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Invoice, 0, len(l.invoices))
	for i := len(l.invoices) - 1; i >= 0; i-- {
		if status == "" || l.invoices[i].Status == status {
			out = append(out, l.invoices[i])
		}
	}
	return out
}

// Outstanding sums the totals of pending invoices.
func (l *Ledger) Outstanding() decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range l.List(Pending) {
		sum = sum.Add(inv.Total)
	}
	return sum
}
