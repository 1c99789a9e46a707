// Package store holds the authoritative product catalog.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

// Catalog is the catalog store contract shared by the engines. Quantities
// only change through ApplyQuantityDeltas or a full Update.
type Catalog interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id string) (model.Product, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) (model.Product, error)
	ApplyQuantityDeltas(ctx context.Context, deltas []model.QuantityDelta) ([]model.QuantityChange, error)
	Close() error
}

// Memory is an in-memory Catalog preserving insertion order.
type Memory struct {
	mu    sync.RWMutex
	order []string
	m     map[string]model.Product
	skus  map[string]string // sku key -> id
	now   func() time.Time
}

var _ Catalog = (*Memory)(nil)

// New returns an empty in-memory catalog.
func New() *Memory {
	return &Memory{
		m:    make(map[string]model.Product),
		skus: make(map[string]string),
		now:  time.Now,
	}
}

// List returns copies of all products in insertion order.
func (s *Memory) List(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.m[id])
	}
	return out, nil
}

// Get returns the product with id or model.ErrNotFound.
func (s *Memory) Get(_ context.Context, id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, fmt.Errorf("get %q: %w", id, model.ErrNotFound)
	}
	return p, nil
}

// FindBySKU looks a product up by SKU, ignoring case.
func (s *Memory) FindBySKU(_ context.Context, sku string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.skus[model.SKUKey(sku)]
	if !ok {
		return model.Product{}, fmt.Errorf("sku %q: %w", sku, model.ErrNotFound)
	}
	return s.m[id], nil
}

// Create stores p, assigning an id and creation time when missing.
func (s *Memory) Create(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := s.m[p.ID]; exists {
		return model.Product{}, fmt.Errorf("create %q: id already in use: %w", p.ID, model.ErrInvalidProduct)
	}
	key := model.SKUKey(p.SKU)
	if _, taken := s.skus[key]; taken {
		return model.Product{}, fmt.Errorf("create %q: %w", p.SKU, model.ErrDuplicateSKU)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	s.m[p.ID] = p
	s.skus[key] = p.ID
	s.order = append(s.order, p.ID)
	return p, nil
}

// Update replaces every editable field of an existing product. The SKU must
// stay unique among the other products; CreatedAt is preserved.
func (s *Memory) Update(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[p.ID]
	if !ok {
		return model.Product{}, fmt.Errorf("update %q: %w", p.ID, model.ErrNotFound)
	}
	key := model.SKUKey(p.SKU)
	if owner, taken := s.skus[key]; taken && owner != p.ID {
		return model.Product{}, fmt.Errorf("update %q: %w", p.SKU, model.ErrDuplicateSKU)
	}
	p.CreatedAt = cur.CreatedAt
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	delete(s.skus, model.SKUKey(cur.SKU))
	s.skus[key] = p.ID
	s.m[p.ID] = p
	return p, nil
}

// ApplyQuantityDeltas sets new quantities, floored at zero. Either every
// delta applies or none does.
func (s *Memory) ApplyQuantityDeltas(_ context.Context, deltas []model.QuantityDelta) ([]model.QuantityChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range deltas {
		if _, ok := s.m[d.ProductID]; !ok {
			return nil, fmt.Errorf("apply deltas %q: %w", d.ProductID, model.ErrNotFound)
		}
	}
	changes := make([]model.QuantityChange, 0, len(deltas))
	for _, d := range deltas {
		p := s.m[d.ProductID]
		ch := model.QuantityChange{ProductID: p.ID, Name: p.Name, Before: p.Quantity}
		p.Quantity = max(d.Quantity, 0)
		ch.After = p.Quantity
		s.m[p.ID] = p
		changes = append(changes, ch)
	}
	return changes, nil
}

// Close is a no-op.
func (s *Memory) Close() error { return nil }
