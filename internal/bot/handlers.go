package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	"github.com/m3rciful/shopbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/cart"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/orders"
	"github.com/m3rciful/shopbot/internal/wizard"
)

// Callback uniques for the shop keyboard.
const (
	cbCatalog  = "catalog"
	cbCart     = "cart"
	cbCheckout = "checkout"
	cbClear    = "clear_cart"
	cbAdd      = "add"
)

// catalogPageLimit caps how many product cards one /catalog request sends.
const catalogPageLimit = 50

const (
	msgAdminOnly          = "This command is available to the administrator only."
	msgCatalogEmpty       = "The catalog is empty right now. Check back later."
	msgCatalogUnavailable = "The shop is temporarily unavailable, please try again in a minute."
	msgCartEmpty          = "Your cart is empty. Browse the catalog to add something."
	msgCartCleared        = "Cart cleared."
	msgOrderPlaced        = "Thank you! Your order has been sent to the shop."
	msgOrderNotForwarded  = "Your order could not be forwarded right now, please try again later."
)

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Open the shop menu",
	})
	reg.RegisterCommand("/catalog", commands.Command{
		Handler:     a.handleCatalog,
		Description: "Browse the product catalog",
	})
	reg.RegisterCommand("/cart", commands.Command{
		Handler:     a.handleCart,
		Description: "Show your cart",
	})
	reg.RegisterCommand("/order", commands.Command{
		Handler:     a.handleCheckout,
		Description: "Place the order",
		Aliases:     []string{"checkout"},
	})
	reg.RegisterCommand("/add_product", commands.Command{
		Handler:     a.Wizard.Start,
		Description: "Add a product to the catalog",
		AdminOnly:   true,
	})

	reg.RegisterCallback(cbCatalog, ackThen(a.handleCatalog))
	reg.RegisterCallback(cbCart, ackThen(a.handleCart))
	reg.RegisterCallback(cbCheckout, ackThen(a.handleCheckout))
	reg.RegisterCallback(cbClear, ackThen(a.handleClear))
	reg.RegisterCallback(cbAdd, a.handleAdd)
	reg.RegisterCallback(wizard.UniqueConfirm, a.Wizard.Confirm)
	reg.RegisterCallback(wizard.UniqueCancel, a.Wizard.Cancel)

	// No text fallback: free text outside a wizard that is not a command is
	// dropped by the router.

	return reg
}

// ackThen acknowledges the button press before running the shared handler, so
// commands and buttons use the same logic.
func ackThen(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := c.Respond(&tele.CallbackResponse{}); err != nil {
			return err
		}
		return h(c)
	}
}

func (a *App) handleStart(c tele.Context) error {
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🛍 Catalog", Unique: cbCatalog},
		{Text: "🛒 Cart", Unique: cbCart},
	})
	text := "Welcome to the shop!\n\n" +
		"/catalog — browse the products\n" +
		"/cart — view your cart\n" +
		"/order — place the order"
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// handleCatalog sends one card per active product, photo first when the row
// has one, each with its own add button.
func (a *App) handleCatalog(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	products, err := a.Catalog.ListActive(ctx)
	if err != nil {
		logger.Error(ctx, "bot", "catalog.list_failed", slog.String("err", err.Error()))
		return tghelpers.SendText(c, msgCatalogUnavailable)
	}
	if len(products) == 0 {
		return tghelpers.SendText(c, msgCatalogEmpty)
	}

	truncated := len(products) > catalogPageLimit
	if truncated {
		products = products[:catalogPageLimit]
	}

	for _, p := range products {
		card := renderProductCard(p)
		markup := keyboard.Single("🛒 Add to cart", cbAdd, p.ID)
		if p.PhotoURL != "" {
			if err := tghelpers.SendPhoto(c, p.PhotoURL, card, markup); err != nil {
				return err
			}
			continue
		}
		if err := tghelpers.SendText(c, card, &tele.SendOptions{ReplyMarkup: markup}); err != nil {
			return err
		}
	}

	if truncated {
		return tghelpers.SendText(c, fmt.Sprintf("Showing the first %d products.", catalogPageLimit))
	}
	return nil
}

func renderProductCard(p catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %.2f", p.Name, p.Price)
	if p.Category != "" {
		fmt.Fprintf(&b, "\n%s", p.Category)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", p.Description)
	}
	return b.String()
}

// handleAdd resolves the pressed product against a fresh catalog fetch and
// increments the cart. The answer is a toast, not a message, to keep the
// catalog view uncluttered.
func (a *App) handleAdd(c tele.Context) error {
	id := strings.TrimSpace(callbacks.CallbackPayload(c))
	if id == "" {
		return c.Respond(&tele.CallbackResponse{})
	}

	ctx := tghelpers.BuildContext(c)
	p, err := a.Catalog.FindByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return c.Respond(&tele.CallbackResponse{Text: "This product is no longer available."})
	}
	if err != nil {
		logger.Error(ctx, "bot", "cart.add_failed",
			slog.String("product_id", id),
			slog.String("err", err.Error()),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgCatalogUnavailable})
	}

	qty := a.Cart.Add(c.Sender().ID, p.ID)
	return c.Respond(&tele.CallbackResponse{
		Text: fmt.Sprintf("%s added to cart (×%d)", p.Name, qty),
	})
}

func (a *App) handleCart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	sum, err := a.Cart.Summarize(ctx, c.Sender().ID)
	if err != nil {
		logger.Error(ctx, "bot", "cart.summarize_failed", slog.String("err", err.Error()))
		return tghelpers.SendText(c, msgCatalogUnavailable)
	}
	if sum.Empty() {
		return tghelpers.SendText(c, msgCartEmpty)
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Place order", Unique: cbCheckout}},
		[]keyboard.InlineBtn{{Text: "🗑 Clear cart", Unique: cbClear}},
	)
	text := "🛒 Your cart:\n\n" + cart.RenderLines(sum)
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// handleCheckout forwards the order to the administrator. The cart is cleared
// after the notification attempt regardless of its outcome; a retried order
// must never be double-billed from a stale cart.
func (a *App) handleCheckout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	sum, err := a.Cart.Checkout(ctx, userID)
	if errors.Is(err, cart.ErrEmptyCart) {
		return tghelpers.SendText(c, msgCartEmpty)
	}
	if err != nil {
		logger.Error(ctx, "bot", "order.checkout_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgCatalogUnavailable)
	}

	sender := c.Sender()
	username := ""
	if sender != nil {
		username = sender.Username
	}
	notifyErr := a.notifyAdmin(c, renderOrder(userID, senderLabel(sender), sum))

	// Journaling is best effort; the order already reached (or failed to
	// reach) the admin either way.
	if err := a.Journal.Record(ctx, orders.FromSummary(userID, username, sum)); err != nil {
		logger.Warn(ctx, "bot", "order.journal_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	a.Cart.Clear(userID)

	if notifyErr != nil {
		logger.Error(ctx, "bot", "order.notify_failed",
			slog.Int64("user_id", userID),
			slog.String("err", notifyErr.Error()),
		)
		return tghelpers.SendText(c, msgOrderNotForwarded)
	}

	logger.Info(ctx, "bot", "order.placed",
		slog.Int64("user_id", userID),
		slog.Float64("total", sum.Total),
		slog.Int("positions", len(sum.Lines)),
	)
	return tghelpers.SendText(c, msgOrderPlaced)
}

func renderOrder(userID int64, label string, sum cart.Summary) string {
	from := fmt.Sprintf("id %d", userID)
	if label != "" {
		from = label + " (" + from + ")"
	}
	return "🆕 New order from " + from + ":\n\n" + cart.RenderLines(sum)
}

// senderLabel prefers the @username and falls back to the profile name.
func senderLabel(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

func (a *App) handleClear(c tele.Context) error {
	a.Cart.Clear(c.Sender().ID)
	return tghelpers.SendText(c, msgCartCleared)
}
