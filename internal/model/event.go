package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind identifies a domain event delivered to the activity sink.
type EventKind string

const (
	EventLowStock       EventKind = "low_stock"
	EventOutOfStock     EventKind = "out_of_stock"
	EventSaleCompleted  EventKind = "sale_completed"
	EventProductCreated EventKind = "product_created"
	EventProductEdited  EventKind = "product_edited"
	EventInvoiceCreated EventKind = "invoice_created"
	EventInvoicePaid    EventKind = "invoice_paid"
)

// Event is a discrete signal emitted by a mutating operation.
type Event struct {
	Kind      EventKind       `json:"kind"`
	Sequence  uint64          `json:"sequence"`
	At        time.Time       `json:"at"`
	Actor     string          `json:"actor"`
	ProductID string          `json:"product_id,omitempty"`
	Subject   string          `json:"subject"`
	Before    int             `json:"before,omitempty"`
	After     int             `json:"after,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Ref       string          `json:"ref,omitempty"`
	Items     int             `json:"items,omitempty"`
}

// ActivityCategory groups activity records for filtering.
type ActivityCategory string

const (
	CategoryInventory ActivityCategory = "inventory"
	CategorySales     ActivityCategory = "sales"
	CategoryInvoices  ActivityCategory = "invoices"
	CategoryAlerts    ActivityCategory = "alerts"
)

// ActivityRecord is an append-only history entry.
type ActivityRecord struct {
	ID       string           `json:"id"`
	Sequence uint64           `json:"sequence"`
	Actor    string           `json:"actor"`
	Verb     string           `json:"verb"`
	Target   string           `json:"target"`
	At       time.Time        `json:"at"`
	Category ActivityCategory `json:"category"`
}
