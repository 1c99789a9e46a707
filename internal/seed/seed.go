// Package seed loads catalog fixtures from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/money"
	"github.com/fairyhunter13/inventory-register-service/internal/store"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type file struct {
	Products []entry `yaml:"products"`
}

type entry struct {
	Name      string `yaml:"name"`
	SKU       string `yaml:"sku"`
	Category  string `yaml:"category"`
	Price     string `yaml:"price"`
	Quantity  int    `yaml:"quantity"`
	CreatedAt string `yaml:"created_at"`
	Image     string `yaml:"image"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Load decodes a seed document. Prices use the display format ("€12.34").
func Load(r io.Reader) ([]model.Product, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	out := make([]model.Product, 0, len(f.Products))
	for i, e := range f.Products {
		if e.Name == "" || e.SKU == "" {
			return nil, fmt.Errorf("seed product %d: name and sku are required", i+1)
		}
		price, err := money.Parse(e.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product %s: %w", e.SKU, err)
		}
		if e.Quantity < 0 {
			return nil, fmt.Errorf("seed product %s: negative quantity", e.SKU)
		}
		created, err := parseDate(e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("seed product %s: %w", e.SKU, err)
		}
		out = append(out, model.Product{
			Name: e.Name, SKU: e.SKU, Category: e.Category, Price: price,
			Quantity: e.Quantity, CreatedAt: created, Image: e.Image,
		})
	}
	return out, nil
}

// Default returns the built-in sample catalog.
func Default() []model.Product {
	products, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return products
}

// Apply creates the products in order, skipping SKUs the catalog already
// has. It returns the number created.
func Apply(ctx context.Context, catalog store.Catalog, products []model.Product) (int, error) {
	n := 0
	for _, p := range products {
		if _, err := catalog.FindBySKU(ctx, p.SKU); err == nil {
			continue
		} else if !errors.Is(err, model.ErrNotFound) {
			return n, err
		}
		if _, err := catalog.Create(ctx, p); err != nil {
			return n, fmt.Errorf("seed %s: %w", p.SKU, err)
		}
		n++
	}
	return n, nil
}
