package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/middleware"
	"github.com/m3rciful/shopbot/internal/cart"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/orders"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/wizard"
)

const (
	testAdminID int64 = 99
	testUserID  int64 = 1
)

// shopCtx is a minimal tele.Context stand-in recording what the handlers send.
type shopCtx struct {
	tele.Context
	user     *tele.User
	data     string
	store    map[string]any
	sent     []string
	response *tele.CallbackResponse
}

func newShopCtx(userID int64) *shopCtx {
	return &shopCtx{
		user:  &tele.User{ID: userID, Username: "buyer"},
		store: make(map[string]any),
	}
}

func callbackCtx(userID int64, unique, payload string) *shopCtx {
	c := newShopCtx(userID)
	c.data = "\f" + unique + "|" + payload
	return c
}

func (c *shopCtx) Sender() *tele.User  { return c.user }
func (c *shopCtx) Chat() *tele.Chat    { return &tele.Chat{ID: c.user.ID} }
func (c *shopCtx) Update() tele.Update { return tele.Update{} }
func (c *shopCtx) Text() string        { return "" }
func (c *shopCtx) Get(k string) any    { return c.store[k] }
func (c *shopCtx) Set(k string, v any) { c.store[k] = v }

func (c *shopCtx) Callback() *tele.Callback {
	if c.data == "" {
		return nil
	}
	return &tele.Callback{Data: c.data}
}

func (c *shopCtx) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) > 0 {
		c.response = resp[0]
	}
	return nil
}

func (c *shopCtx) Send(what interface{}, _ ...interface{}) error {
	switch v := what.(type) {
	case string:
		c.sent = append(c.sent, v)
	case *tele.Photo:
		c.sent = append(c.sent, v.Caption)
	}
	return nil
}

func (c *shopCtx) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

// recordingJournal captures journaled orders.
type recordingJournal struct {
	records []orders.Order
	err     error
}

func (j *recordingJournal) Record(_ context.Context, o orders.Order) error {
	if j.err != nil {
		return j.err
	}
	j.records = append(j.records, o)
	return nil
}

type testApp struct {
	*App
	journal    *recordingJournal
	adminTexts []string
}

func newTestApp(products ...catalog.Product) *testApp {
	return newTestAppWith(catalog.NewMemoryCatalog(products...))
}

func newTestAppWith(cat catalog.Catalog) *testApp {
	sessions := session.NewStore()
	journal := &recordingJournal{}
	ta := &testApp{journal: journal}
	ta.App = &App{
		Sessions: sessions,
		Catalog:  cat,
		Cart:     &cart.Engine{Sessions: sessions, Catalog: cat},
		Wizard: &wizard.Wizard{
			Sessions: sessions,
			Catalog:  cat,
			Admin:    middleware.AdminOptions{AdminID: testAdminID},
		},
		Journal: journal,
	}
	ta.notifyAdmin = func(_ tele.Context, text string) error {
		ta.adminTexts = append(ta.adminTexts, text)
		return nil
	}
	return ta
}

func shopProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "P1", Name: "Lipstick", Category: "Makeup", Price: 50, Stock: 5, Active: true},
		{ID: "P2", Name: "Mascara", Category: "Makeup", Price: 30, Stock: 3, Active: true, PhotoURL: "https://example.com/m.jpg"},
	}
}

func TestCatalogEmpty(t *testing.T) {
	a := newTestApp()
	c := newShopCtx(testUserID)

	if err := a.handleCatalog(c); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if c.lastSent() != msgCatalogEmpty {
		t.Fatalf("reply = %q", c.lastSent())
	}
}

func TestCatalogSendsCardPerProduct(t *testing.T) {
	a := newTestApp(shopProducts()...)
	c := newShopCtx(testUserID)

	if err := a.handleCatalog(c); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(c.sent) != 2 {
		t.Fatalf("sent %d messages, expected 2: %q", len(c.sent), c.sent)
	}
	if !strings.Contains(c.sent[0], "Lipstick — 50.00") {
		t.Fatalf("first card = %q", c.sent[0])
	}
}

func TestCatalogUnavailable(t *testing.T) {
	a := newTestAppWith(failingCatalog{})
	c := newShopCtx(testUserID)

	if err := a.handleCatalog(c); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if c.lastSent() != msgCatalogUnavailable {
		t.Fatalf("reply = %q", c.lastSent())
	}
}

func TestAddCallbackIncrements(t *testing.T) {
	a := newTestApp(shopProducts()...)

	c := callbackCtx(testUserID, cbAdd, "P1")
	if err := a.handleAdd(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.response == nil || !strings.Contains(c.response.Text, "×1") {
		t.Fatalf("toast = %+v", c.response)
	}

	c = callbackCtx(testUserID, cbAdd, "P1")
	if err := a.handleAdd(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(c.response.Text, "×2") {
		t.Fatalf("toast = %+v", c.response)
	}

	if snap := a.Sessions.CartSnapshot(testUserID); snap["P1"] != 2 {
		t.Fatalf("cart = %v", snap)
	}
}

func TestAddCallbackUnknownProduct(t *testing.T) {
	a := newTestApp(shopProducts()...)

	c := callbackCtx(testUserID, cbAdd, "GONE")
	if err := a.handleAdd(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.response == nil || !strings.Contains(c.response.Text, "no longer available") {
		t.Fatalf("toast = %+v", c.response)
	}
	if snap := a.Sessions.CartSnapshot(testUserID); len(snap) != 0 {
		t.Fatalf("cart mutated: %v", snap)
	}
}

func TestCartViewEmpty(t *testing.T) {
	a := newTestApp(shopProducts()...)
	c := newShopCtx(testUserID)

	if err := a.handleCart(c); err != nil {
		t.Fatalf("cart: %v", err)
	}
	if c.lastSent() != msgCartEmpty {
		t.Fatalf("reply = %q", c.lastSent())
	}
}

func TestCartView(t *testing.T) {
	a := newTestApp(shopProducts()...)
	a.Cart.Add(testUserID, "P1")
	a.Cart.Add(testUserID, "P1")

	c := newShopCtx(testUserID)
	if err := a.handleCart(c); err != nil {
		t.Fatalf("cart: %v", err)
	}
	if !strings.Contains(c.lastSent(), "Lipstick × 2 — 100.00") {
		t.Fatalf("cart view = %q", c.lastSent())
	}
	if !strings.Contains(c.lastSent(), "Total: 100.00") {
		t.Fatalf("cart view missing total: %q", c.lastSent())
	}
}

func TestCheckoutForwardsAndClears(t *testing.T) {
	a := newTestApp(shopProducts()...)
	a.Cart.Add(testUserID, "P1")
	a.Cart.Add(testUserID, "P2")

	c := newShopCtx(testUserID)
	if err := a.handleCheckout(c); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if len(a.adminTexts) != 1 {
		t.Fatalf("admin notifications = %d", len(a.adminTexts))
	}
	order := a.adminTexts[0]
	if !strings.Contains(order, "@buyer") || !strings.Contains(order, "Total: 80.00") {
		t.Fatalf("order text = %q", order)
	}

	if c.lastSent() != msgOrderPlaced {
		t.Fatalf("reply = %q", c.lastSent())
	}
	if snap := a.Sessions.CartSnapshot(testUserID); len(snap) != 0 {
		t.Fatalf("cart not cleared: %v", snap)
	}

	if len(a.journal.records) != 1 {
		t.Fatalf("journal records = %d", len(a.journal.records))
	}
	if a.journal.records[0].Total != 80 {
		t.Fatalf("journaled total = %v", a.journal.records[0].Total)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	a := newTestApp(shopProducts()...)
	c := newShopCtx(testUserID)

	if err := a.handleCheckout(c); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if c.lastSent() != msgCartEmpty {
		t.Fatalf("reply = %q", c.lastSent())
	}
	if len(a.adminTexts) != 0 {
		t.Fatalf("empty cart reached the admin: %q", a.adminTexts)
	}
}

func TestCheckoutCatalogErrorKeepsCart(t *testing.T) {
	cat := catalog.NewMemoryCatalog(shopProducts()...)
	a := newTestAppWith(cat)
	a.Cart.Add(testUserID, "P1")

	a.Catalog = failingCatalog{}
	a.Cart.Catalog = failingCatalog{}

	c := newShopCtx(testUserID)
	if err := a.handleCheckout(c); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if c.lastSent() != msgCatalogUnavailable {
		t.Fatalf("reply = %q", c.lastSent())
	}
	// Nothing was forwarded, so the cart must survive for a retry.
	if snap := a.Sessions.CartSnapshot(testUserID); snap["P1"] != 1 {
		t.Fatalf("cart lost on catalog failure: %v", snap)
	}
}

func TestCheckoutNotifyFailureStillClears(t *testing.T) {
	a := newTestApp(shopProducts()...)
	a.Cart.Add(testUserID, "P1")
	a.notifyAdmin = func(tele.Context, string) error {
		return errors.New("telegram down")
	}

	c := newShopCtx(testUserID)
	if err := a.handleCheckout(c); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if c.lastSent() != msgOrderNotForwarded {
		t.Fatalf("reply = %q", c.lastSent())
	}
	if snap := a.Sessions.CartSnapshot(testUserID); len(snap) != 0 {
		t.Fatalf("cart kept after notification attempt: %v", snap)
	}
}

func TestClearCart(t *testing.T) {
	a := newTestApp(shopProducts()...)
	a.Cart.Add(testUserID, "P1")

	c := newShopCtx(testUserID)
	if err := a.handleClear(c); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if c.lastSent() != msgCartCleared {
		t.Fatalf("reply = %q", c.lastSent())
	}
	if snap := a.Sessions.CartSnapshot(testUserID); len(snap) != 0 {
		t.Fatalf("cart not cleared: %v", snap)
	}
}

func TestJournalFailureDoesNotBlockOrder(t *testing.T) {
	a := newTestApp(shopProducts()...)
	a.Cart.Add(testUserID, "P1")
	a.journal.err = errors.New("db down")

	c := newShopCtx(testUserID)
	if err := a.handleCheckout(c); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if c.lastSent() != msgOrderPlaced {
		t.Fatalf("reply = %q", c.lastSent())
	}
	if len(a.adminTexts) != 1 {
		t.Fatalf("admin notifications = %d", len(a.adminTexts))
	}
}

func TestSenderLabel(t *testing.T) {
	u := &tele.User{ID: 5, FirstName: "Jane", LastName: "Doe"}
	if got := senderLabel(u); got != "Jane Doe" {
		t.Fatalf("label = %q", got)
	}
	u.Username = "jdoe"
	if got := senderLabel(u); got != "@jdoe" {
		t.Fatalf("label = %q", got)
	}
	if got := senderLabel(nil); got != "" {
		t.Fatalf("label for nil sender = %q", got)
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
