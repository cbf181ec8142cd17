package catalog

import (
	"context"
	"strings"
	"sync"
)

// MemoryCatalog is an in-memory Catalog used in tests and local development.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemoryCatalog seeds an in-memory catalog with the given products.
func NewMemoryCatalog(products ...Product) *MemoryCatalog {
	return &MemoryCatalog{products: append([]Product(nil), products...)}
}

// ListActive returns active products in insertion order.
func (m *MemoryCatalog) ListActive(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByID resolves one product or ErrNotFound.
func (m *MemoryCatalog) FindByID(ctx context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Append adds a product at the end; duplicate ids are accepted, matching the
// append-only sheet.
func (m *MemoryCatalog) Append(ctx context.Context, p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, p)
	return nil
}

// Remove deletes a product by id; test helper for vanished-product scenarios.
func (m *MemoryCatalog) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.products[:0]
	for _, p := range m.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.products = kept
}
