package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fairyhunter13/inventory-register-service/internal/config"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
)

type collector struct {
	mu     sync.Mutex
	events []model.Event
}

func (c *collector) Handle(ev model.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Event(nil), c.events...)
}

func TestQueueNonBlockingEnqueue(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 0)
	for i := 0; i < 1000; i++ {
		if ok := q.Enqueue(model.Event{Kind: model.EventProductEdited, Items: i}); !ok {
			t.Fatalf("enqueue failed at %d", i)
		}
	}
	if q.BacklogSize() == 0 {
		t.Fatalf("expected backlog > 0")
	}
	if st := q.Stats(); st.Enqueued != 1000 || st.Idle() {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestQueueShutdownIntake(t *testing.T) {
	q := New(1)
	q.CloseIntake()
	if !q.IsShuttingDown() {
		t.Fatalf("expected shutting down true")
	}
	if ok := q.Enqueue(model.Event{Kind: model.EventLowStock}); ok {
		t.Fatalf("expected enqueue false when shutting down")
	}
}

func TestManagerDeliversEveryEvent(t *testing.T) {
	cfg := config.Load()
	obs.InitLogger()
	c := &collector{}
	mgr := NewManager(cfg, New(16), c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	for i := 0; i < 100; i++ {
		if !mgr.Publish(model.Event{Kind: model.EventSaleCompleted}) {
			t.Fatalf("publish %d rejected", i)
		}
	}
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDrain()
	if ok := mgr.DrainUntil(ctxDrain); !ok {
		t.Fatalf("drain timeout")
	}
	got := c.snapshot()
	if len(got) != 100 {
		t.Fatalf("expected 100 events, got %d", len(got))
	}
	seen := make(map[uint64]bool)
	for _, ev := range got {
		if ev.Sequence == 0 || seen[ev.Sequence] || ev.At.IsZero() {
			t.Fatalf("bad stamping: %+v", ev)
		}
		seen[ev.Sequence] = true
	}
}

func TestManagerPublishAfterCloseIntake(t *testing.T) {
	cfg := config.Load()
	mgr := NewManager(cfg, New(4), HandlerFunc(func(model.Event) {}))
	mgr.CloseIntake()
	if mgr.Publish(model.Event{Kind: model.EventLowStock}) {
		t.Fatalf("expected publish rejected")
	}
	if !mgr.IsShuttingDown() {
		t.Fatalf("expected shutting down")
	}
}
