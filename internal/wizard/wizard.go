// Package wizard implements the admin add-product dialogue: a linear
// sequence of text prompts that assembles a draft product and appends it to
// the catalog after an explicit confirmation.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/core/telegram/middleware"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/session"
)

// Callback uniques for the confirmation step.
const (
	UniqueConfirm = "admin_confirm_add"
	UniqueCancel  = "admin_cancel_add"
)

const defaultAppendTimeout = 10 * time.Second

// Wizard drives the add-product dialogue. Per-user serialization of updates
// is provided by the transport middleware, so handlers here read and write
// session state without further locking.
type Wizard struct {
	Sessions *session.Store
	Catalog  catalog.Catalog
	Admin    middleware.AdminOptions
	// Timeout bounds the catalog calls made on confirmation.
	Timeout time.Duration
}

func (w *Wizard) appendTimeout() time.Duration {
	if w.Timeout > 0 {
		return w.Timeout
	}
	return defaultAppendTimeout
}

// InProgress reports whether the user has an active dialogue. The text router
// consults it before command dispatch.
func (w *Wizard) InProgress(userID int64) bool {
	return w.Sessions.InProgress(userID)
}

// Start begins a fresh dialogue for the admin. Starting over discards any
// half-finished draft.
func (w *Wizard) Start(c tele.Context) error {
	if !w.Admin.Allowed(c) {
		return tghelpers.SendText(c, "This command is available to the administrator only.")
	}
	userID := c.Sender().ID

	w.Sessions.ClearWizard(userID)
	w.Sessions.SetDraft(userID, &Draft{})
	w.Sessions.SetWizardState(userID, AwaitingID)

	logger.Info(tghelpers.BuildContext(c), "wizard", "wizard.start",
		slog.Int64("user_id", userID),
	)
	return tghelpers.SendText(c, "Adding a new product.\n"+Prompt(AwaitingID))
}

// Handle consumes one text message of an active dialogue. It is installed as
// the router's dialogue hook and is only called while InProgress is true.
func (w *Wizard) Handle(c tele.Context) error {
	if !w.Admin.Allowed(c) {
		return nil
	}
	userID := c.Sender().ID

	st := w.Sessions.WizardState(userID)
	if st == session.WizardNone {
		return nil
	}
	draft, ok := w.Sessions.Draft(userID).(*Draft)
	if !ok || draft == nil {
		// Draft lost (should not happen); restart cleanly.
		w.Sessions.ClearWizard(userID)
		return tghelpers.SendText(c, "The dialogue was interrupted. Send /add_product to start over.")
	}

	res := ApplyStep(st, draft, c.Text())
	w.Sessions.SetWizardState(userID, res.Next)

	if !res.Accepted {
		return tghelpers.SendText(c, res.Reply)
	}
	if res.Next == AwaitingConfirm {
		return w.sendPreview(c, draft)
	}
	return tghelpers.SendText(c, res.Reply)
}

// sendPreview shows the assembled draft with confirm/cancel buttons. The
// duplicate-id probe is best effort; a sheet error never blocks the preview.
func (w *Wizard) sendPreview(c tele.Context, draft *Draft) error {
	text := draft.Preview()

	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), w.appendTimeout())
	defer cancel()
	if _, err := w.Catalog.FindByID(ctx, draft.ID); err == nil {
		text = "⚠️ A product with id " + draft.ID + " already exists; confirming adds a second row.\n\n" + text
	} else if !errors.Is(err, catalog.ErrNotFound) {
		logger.Warn(ctx, "wizard", "wizard.duplicate_probe_failed",
			slog.String("product_id", draft.ID),
			slog.String("err", err.Error()),
		)
	}

	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Confirm", Unique: UniqueConfirm},
		{Text: "❌ Cancel", Unique: UniqueCancel},
	})
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// Confirm appends the draft to the catalog. Outside the confirmation step the
// press is acknowledged and ignored, so a stale button cannot append twice.
func (w *Wizard) Confirm(c tele.Context) error {
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	if !w.Admin.Allowed(c) {
		return nil
	}
	userID := c.Sender().ID

	if w.Sessions.WizardState(userID) != AwaitingConfirm {
		return nil
	}
	draft, ok := w.Sessions.Draft(userID).(*Draft)
	if !ok || draft == nil {
		w.Sessions.ClearWizard(userID)
		return tghelpers.SendText(c, "The dialogue was interrupted. Send /add_product to start over.")
	}

	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), w.appendTimeout())
	defer cancel()
	if err := w.Catalog.Append(ctx, draft.Product()); err != nil {
		logger.Error(ctx, "wizard", "wizard.append_failed",
			slog.String("product_id", draft.ID),
			slog.String("err", err.Error()),
		)
		// Keep the dialogue in the confirmation step so the admin can
		// retry or cancel.
		return tghelpers.SendText(c, "Could not write to the catalog right now. Press Confirm to retry or Cancel to drop the draft.")
	}

	w.Sessions.ClearWizard(userID)
	logger.Info(ctx, "wizard", "wizard.product_added",
		slog.Int64("user_id", userID),
		slog.String("product_id", draft.ID),
	)
	return tghelpers.SendText(c, "Product "+draft.Name+" ("+draft.ID+") added to the catalog.")
}

// Cancel drops the draft without touching the catalog.
func (w *Wizard) Cancel(c tele.Context) error {
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	if !w.Admin.Allowed(c) {
		return nil
	}
	userID := c.Sender().ID

	if w.Sessions.WizardState(userID) != AwaitingConfirm {
		return nil
	}
	w.Sessions.ClearWizard(userID)
	return tghelpers.SendText(c, "Cancelled. Nothing was added.")
}
