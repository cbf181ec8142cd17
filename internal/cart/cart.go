// Package cart implements the cart lifecycle: adding items, summarizing
// against the live catalog, and producing the order for checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/session"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart: empty cart")

// Line is one summarized cart position resolved against the catalog.
type Line struct {
	Product  catalog.Product
	Quantity int
	Total    float64
}

// Summary is the cart resolved against the current catalog. Lines follow
// catalog order; entries whose product vanished from the catalog are absent.
type Summary struct {
	Lines []Line
	Total float64
}

// Empty reports whether the summary has no resolvable lines.
func (s Summary) Empty() bool {
	return len(s.Lines) == 0
}

// Engine binds the session store and the catalog capability.
type Engine struct {
	Sessions *session.Store
	Catalog  catalog.Catalog
}

// Add increments the quantity for the product by one, creating the entry at 1,
// and returns the new quantity. Stock is intentionally not checked here; the
// admin sees the real quantity on the order and the sheet stays authoritative.
func (e *Engine) Add(userID int64, productID string) int {
	var qty int
	e.Sessions.WithUser(userID, func(sess *session.Session) {
		sess.Cart[productID]++
		qty = sess.Cart[productID]
	})
	return qty
}

// Clear empties the user's cart.
func (e *Engine) Clear(userID int64) {
	e.Sessions.ClearCart(userID)
}

// Summarize resolves the stored cart against one fresh catalog listing.
// Products missing from the catalog are dropped from the summary without
// touching the stored cart.
func (e *Engine) Summarize(ctx context.Context, userID int64) (Summary, error) {
	snap := e.Sessions.CartSnapshot(userID)
	if len(snap) == 0 {
		return Summary{}, nil
	}

	products, err := e.Catalog.ListActive(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize cart: %w", err)
	}

	var sum Summary
	for _, p := range products {
		qty, ok := snap[p.ID]
		if !ok {
			continue
		}
		line := Line{
			Product:  p,
			Quantity: qty,
			Total:    p.Price * float64(qty),
		}
		sum.Lines = append(sum.Lines, line)
		sum.Total += line.Total
	}
	return sum, nil
}

// Checkout produces the order summary for forwarding to the administrator.
// The caller clears the cart after the notification attempt; Checkout itself
// does not mutate session state.
func (e *Engine) Checkout(ctx context.Context, userID int64) (Summary, error) {
	sum, err := e.Summarize(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	if sum.Empty() {
		return Summary{}, ErrEmptyCart
	}
	return sum, nil
}

// RenderLines formats summary lines for chat output, one product per line.
func RenderLines(sum Summary) string {
	var b strings.Builder
	for _, l := range sum.Lines {
		fmt.Fprintf(&b, "%s × %d — %.2f\n", l.Product.Name, l.Quantity, l.Total)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f", sum.Total)
	return b.String()
}
