package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a product id does not resolve.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrEmptyID rejects appends without an id before they reach the store.
	ErrEmptyID = errors.New("catalog: empty product id")
)

// Product is one row of the external catalog. The store owns id uniqueness;
// the bot only refuses empty ids.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	Stock       int
	Description string
	PhotoURL    string
	Active      bool
}

// Catalog is the spreadsheet-backed product capability. Every call is a fresh
// fetch; the bot deliberately never caches catalog data between updates.
type Catalog interface {
	// ListActive returns active products in sheet order.
	ListActive(ctx context.Context) ([]Product, error)
	// FindByID resolves one product or ErrNotFound.
	FindByID(ctx context.Context, id string) (Product, error)
	// Append adds a new product row at the end of the sheet.
	Append(ctx context.Context, p Product) error
}

// ParsePrice accepts a decimal with either comma or dot separator.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	// ParseFloat accepts NaN and infinities; a non-finite price would poison
	// every later total.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite price %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return v, nil
}

// ParseStock accepts a non-negative integer.
func ParseStock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty stock")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid stock %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative stock %q", s)
	}
	return v, nil
}

// ParseActive interprets the sheet's active column; the original sheet uses
// yes/y/true/1 and treats a blank cell as active.
func ParseActive(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "y", "true", "1":
		return true
	}
	return false
}
