package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/money"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
)

// Feed mirrors activity records to an external store.
type Feed interface {
	Push(ctx context.Context, rec model.ActivityRecord) error
	Recent(ctx context.Context, n int) ([]model.ActivityRecord, error)
}

// Recorder turns delivered events into activity records and, for stock
// alerts, notifications. It satisfies queue.Handler.
type Recorder struct {
	Log    *Log
	Inbox  *Inbox
	Feed   Feed
	Symbol string
}

// NewRecorder builds a Recorder. inbox and feed may be nil.
func NewRecorder(log *Log, inbox *Inbox, feed Feed, symbol string) *Recorder {
	return &Recorder{Log: log, Inbox: inbox, Feed: feed, Symbol: symbol}
}

// Handle records ev in the log, the inbox and the feed.
func (r *Recorder) Handle(ev model.Event) {
	rec := Describe(ev, r.Symbol)
	r.Log.Append(rec)
	if msg, ok := Alert(ev); ok && r.Inbox != nil {
		r.Inbox.Push(Notification{
			ID:       rec.ID,
			Sequence: ev.Sequence,
			Kind:     ev.Kind,
			Message:  msg,
			At:       rec.At,
		})
	}
	if r.Feed != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.Feed.Push(ctx, rec); err != nil {
			obs.Logger.Warn("activity_feed_push_failed", "error", err, "kind", string(ev.Kind))
		}
	}
	obs.Logger.Debug("activity_recorded", "kind", string(ev.Kind), "sequence", ev.Sequence, "target", rec.Target)
}

// Describe renders an event as an activity record.
func Describe(ev model.Event, symbol string) model.ActivityRecord {
	rec := model.ActivityRecord{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Sequence: ev.Sequence,
		Actor:    ev.Actor,
		Target:   ev.Subject,
		At:       ev.At,
	}
	if rec.Actor == "" {
		rec.Actor = "System"
	}
	switch ev.Kind {
	case model.EventProductCreated:
		rec.Verb, rec.Category = "added product", model.CategoryInventory
	case model.EventProductEdited:
		rec.Verb, rec.Category = "updated product", model.CategoryInventory
	case model.EventSaleCompleted:
		rec.Verb, rec.Category = "completed a sale", model.CategorySales
		rec.Target = fmt.Sprintf("%d items, %s", ev.Items, money.Format(ev.Amount, symbol))
		if ev.Ref != "" {
			rec.Target += " (" + ev.Ref + ")"
		}
	case model.EventLowStock:
		rec.Verb, rec.Category = "low stock alert for", model.CategoryAlerts
		rec.Target = fmt.Sprintf("%s (%d left)", ev.Subject, ev.After)
	case model.EventOutOfStock:
		rec.Verb, rec.Category = "out of stock alert for", model.CategoryAlerts
	case model.EventInvoiceCreated:
		rec.Verb, rec.Category = "created invoice", model.CategoryInvoices
		rec.Target = fmt.Sprintf("%s for %s", ev.Ref, money.Format(ev.Amount, symbol))
	case model.EventInvoicePaid:
		rec.Verb, rec.Category = "marked invoice paid", model.CategoryInvoices
		rec.Target = ev.Ref
	default:
		rec.Verb, rec.Category = string(ev.Kind), model.CategoryInventory
	}
	return rec
}

// Alert returns the notification text for stock alert events.
func Alert(ev model.Event) (string, bool) {
	switch ev.Kind {
	case model.EventLowStock:
		return fmt.Sprintf("%s is running low: %d left in stock", ev.Subject, ev.After), true
	case model.EventOutOfStock:
		return fmt.Sprintf("%s is out of stock", ev.Subject), true
	}
	return "", false
}
