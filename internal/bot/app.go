// Package bot assembles the storefront: catalog browsing, per-user carts,
// checkout forwarding to the administrator, and the admin add-product
// dialogue, wired onto the shared Telegram runtime.
package bot

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/core/database"
	"github.com/m3rciful/shopbot/core/logger"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/middleware"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/internal/cart"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/orders"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/wizard"
)

// App holds the wired storefront components.
type App struct {
	cfg *coreconfig.Config

	Sessions *session.Store
	Catalog  catalog.Catalog
	Cart     *cart.Engine
	Wizard   *wizard.Wizard
	Journal  orders.Journal

	db *sqlx.DB

	// notifyAdmin forwards an order text to the administrator. Replaced in
	// tests; production uses the bot API via the update's context.
	notifyAdmin func(c tele.Context, text string) error
}

// NewApp bootstraps logging, the catalog backend, the optional order journal,
// and the domain components.
func NewApp(cfg *coreconfig.Config) (*App, error) {
	if err := logger.InitLogger(cfg); err != nil {
		return nil, err
	}

	var cat catalog.Catalog
	if strings.TrimSpace(cfg.Sheets.SpreadsheetID) != "" {
		sheetsCat, err := catalog.NewSheetsCatalog(context.Background(), cfg.Sheets)
		if err != nil {
			return nil, err
		}
		cat = sheetsCat
	} else {
		// No spreadsheet configured; local runs get an empty in-memory
		// catalog that the admin can fill via /add_product.
		logger.CAT.Warn("no spreadsheet configured, using in-memory catalog")
		cat = catalog.NewMemoryCatalog()
	}

	var (
		journal orders.Journal = orders.NoopJournal{}
		db      *sqlx.DB
	)
	if cfg.Database.Enabled() {
		if err := database.RunMigrations(cfg.Database); err != nil {
			return nil, err
		}
		var err error
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		journal = orders.NewPostgresJournal(db)
	}

	sessions := session.NewStore()
	adminOpts := middleware.AdminOptions{AdminID: cfg.Telegram.AdminID}

	app := &App{
		cfg:      cfg,
		Sessions: sessions,
		Catalog:  cat,
		Cart:     &cart.Engine{Sessions: sessions, Catalog: cat},
		Wizard: &wizard.Wizard{
			Sessions: sessions,
			Catalog:  cat,
			Admin:    adminOpts,
		},
		Journal: journal,
		db:      db,
	}
	app.notifyAdmin = func(c tele.Context, text string) error {
		return tghelpers.SendTo(c, cfg.Telegram.AdminID, text)
	}
	return app, nil
}

// TelegramRunOptions assembles the registry, middleware chain, and routes for
// the shared runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.buildRegistry()

	rejectAdmin := func(c tele.Context) error {
		return tghelpers.SendText(c, msgAdminOnly)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: rejectAdmin,
	})
	routes = append(routes, router.TextRoutes(a.Wizard, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}, nil
}
