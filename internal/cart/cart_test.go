package cart

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/session"
)

func newEngine(products ...catalog.Product) (*Engine, *catalog.MemoryCatalog) {
	cat := catalog.NewMemoryCatalog(products...)
	return &Engine{Sessions: session.NewStore(), Catalog: cat}, cat
}

func twoProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "P1", Name: "Lipstick", Price: 50, Active: true},
		{ID: "P2", Name: "Mascara", Price: 30, Active: true},
	}
}

func TestAddAccumulates(t *testing.T) {
	e, _ := newEngine(twoProducts()...)

	if qty := e.Add(1, "P1"); qty != 1 {
		t.Fatalf("first add qty = %d", qty)
	}
	if qty := e.Add(1, "P1"); qty != 2 {
		t.Fatalf("second add qty = %d", qty)
	}
	e.Add(1, "P2")

	snap := e.Sessions.CartSnapshot(1)
	if snap["P1"] != 2 || snap["P2"] != 1 {
		t.Fatalf("cart = %v", snap)
	}
	for _, qty := range snap {
		if qty < 1 {
			t.Fatalf("zero or negative quantity stored: %v", snap)
		}
	}
}

func TestCheckoutScenario(t *testing.T) {
	e, _ := newEngine(twoProducts()...)
	e.Add(1, "P1")
	e.Add(1, "P1")
	e.Add(1, "P2")

	sum, err := e.Checkout(context.Background(), 1)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sum.Total != 130 {
		t.Fatalf("total = %v, expected 130", sum.Total)
	}
	if len(sum.Lines) != 2 {
		t.Fatalf("lines = %d", len(sum.Lines))
	}

	// The handler clears after the notification attempt.
	e.Clear(1)
	if snap := e.Sessions.CartSnapshot(1); len(snap) != 0 {
		t.Fatalf("cart not empty after clear: %v", snap)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	e, _ := newEngine(twoProducts()...)

	_, err := e.Checkout(context.Background(), 1)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, expected ErrEmptyCart", err)
	}
	if snap := e.Sessions.CartSnapshot(1); len(snap) != 0 {
		t.Fatalf("empty checkout mutated session: %v", snap)
	}
}

func TestSummarizeTotalMatchesLines(t *testing.T) {
	e, _ := newEngine(twoProducts()...)
	e.Add(1, "P1")
	e.Add(1, "P2")
	e.Add(1, "P2")

	sum, err := e.Summarize(context.Background(), 1)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	var want float64
	for _, l := range sum.Lines {
		want += l.Total
	}
	if sum.Total != want {
		t.Fatalf("total = %v, sum of lines = %v", sum.Total, want)
	}
}

func TestSummarizeDropsVanishedProduct(t *testing.T) {
	e, cat := newEngine(twoProducts()...)
	e.Add(1, "P1")
	e.Add(1, "P2")

	cat.Remove("P2")

	sum, err := e.Summarize(context.Background(), 1)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(sum.Lines) != 1 || sum.Lines[0].Product.ID != "P1" {
		t.Fatalf("lines = %+v", sum.Lines)
	}
	if sum.Total != 50 {
		t.Fatalf("total = %v", sum.Total)
	}

	// The stored cart keeps the dangling entry; only an explicit clear
	// removes it.
	if snap := e.Sessions.CartSnapshot(1); snap["P2"] != 1 {
		t.Fatalf("stored cart rewritten by summarize: %v", snap)
	}
}

func TestSummarizeEmptyCartSkipsCatalog(t *testing.T) {
	e := &Engine{Sessions: session.NewStore(), Catalog: failingCatalog{}}
	sum, err := e.Summarize(context.Background(), 1)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !sum.Empty() {
		t.Fatalf("summary = %+v", sum)
	}
}

type failingCatalog struct{}

func (failingCatalog) ListActive(context.Context) ([]catalog.Product, error) {
	return nil, errors.New("catalog down")
}
func (failingCatalog) FindByID(context.Context, string) (catalog.Product, error) {
	return catalog.Product{}, errors.New("catalog down")
}
func (failingCatalog) Append(context.Context, catalog.Product) error {
	return errors.New("catalog down")
}

func TestRenderLines(t *testing.T) {
	e, _ := newEngine(twoProducts()...)
	e.Add(1, "P1")
	sum, _ := e.Summarize(context.Background(), 1)

	out := RenderLines(sum)
	if !strings.Contains(out, "Lipstick × 1 — 50.00") {
		t.Fatalf("render = %q", out)
	}
	if !strings.Contains(out, "Total: 50.00") {
		t.Fatalf("render missing total: %q", out)
	}
}
