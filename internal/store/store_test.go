package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

func product(name, sku string, qty int) model.Product {
	return model.Product{Name: name, SKU: sku, Category: "Test", Price: decimal.NewFromInt(1), Quantity: qty}
}

func TestStoreCreateKeepsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, sku := range []string{"B-1", "A-1", "C-1"} {
		if _, err := s.Create(ctx, product(sku, sku, 1)); err != nil {
			t.Fatalf("create %s: %v", sku, err)
		}
	}
	list, _ := s.List(ctx)
	if len(list) != 3 || list[0].SKU != "B-1" || list[1].SKU != "A-1" || list[2].SKU != "C-1" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[0].ID == "" || list[0].CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp: %+v", list[0])
	}
}

func TestStoreDuplicateSKUCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Create(ctx, product("Cable", "ABC-1", 5)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.Create(ctx, product("Other", "abc-1", 5))
	if !errors.Is(err, model.ErrDuplicateSKU) {
		t.Fatalf("expected duplicate sku, got %v", err)
	}
}

func TestStoreUpdateExcludesSelfFromSKUCheck(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Create(ctx, product("A", "A-1", 5))
	b, _ := s.Create(ctx, product("B", "B-1", 5))

	a.SKU = "a-1"
	a.Name = "A renamed"
	got, err := s.Update(ctx, a)
	if err != nil {
		t.Fatalf("update own sku: %v", err)
	}
	if got.CreatedAt != a.CreatedAt || got.Name != "A renamed" {
		t.Fatalf("unexpected update result: %+v", got)
	}

	b.SKU = "A-1"
	if _, err := s.Update(ctx, b); !errors.Is(err, model.ErrDuplicateSKU) {
		t.Fatalf("expected duplicate sku, got %v", err)
	}
	if found, err := s.FindBySKU(ctx, "A-1"); err != nil || found.ID != a.ID {
		t.Fatalf("lookup after rename: %+v %v", found, err)
	}

	// the old key is released on rename
	a.SKU = "Z-9"
	if _, err := s.Update(ctx, a); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := s.FindBySKU(ctx, "a-1"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected old sku released, got %v", err)
	}
}

func TestStoreApplyQuantityDeltas(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Create(ctx, product("A", "A-1", 5))
	b, _ := s.Create(ctx, product("B", "B-1", 2))

	changes, err := s.ApplyQuantityDeltas(ctx, []model.QuantityDelta{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: -4}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if changes[0].Before != 5 || changes[0].After != 2 || changes[1].Before != 2 || changes[1].After != 0 {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	got, _ := s.Get(ctx, b.ID)
	if got.Quantity != 0 || got.Status() != model.OutOfStock {
		t.Fatalf("expected floored quantity, got %+v", got)
	}
}

func TestStoreApplyQuantityDeltasAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Create(ctx, product("A", "A-1", 5))
	_, err := s.ApplyQuantityDeltas(ctx, []model.QuantityDelta{{ProductID: a.ID, Quantity: 1}, {ProductID: "missing", Quantity: 1}})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, _ := s.Get(ctx, a.ID)
	if got.Quantity != 5 {
		t.Fatalf("expected untouched quantity, got %d", got.Quantity)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Create(ctx, product("A", "A-1", 5))
	list, _ := s.List(ctx)
	list[0].Quantity = 99
	got, _ := s.Get(ctx, a.ID)
	if got.Quantity != 5 {
		t.Fatalf("list leaked internal state: %d", got.Quantity)
	}
}

func TestStoreConcurrentDeltas(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.Create(ctx, product("A", "A-1", 0))
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		q := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.ApplyQuantityDeltas(ctx, []model.QuantityDelta{{ProductID: a.ID, Quantity: q}})
		}()
	}
	wg.Wait()
	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("not found")
	}
	if got.Quantity < 1 || got.Quantity > 100 {
		t.Fatalf("unexpected quantity %d", got.Quantity)
	}
}
