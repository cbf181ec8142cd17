package wizard

import (
	"strings"

	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/session"
)

// Wizard steps, in dialogue order. Each step waits for one text message
// except AwaitingConfirm, which waits for a button press.
const (
	AwaitingID          session.WizardState = "awaiting_id"
	AwaitingName        session.WizardState = "awaiting_name"
	AwaitingCategory    session.WizardState = "awaiting_category"
	AwaitingPrice       session.WizardState = "awaiting_price"
	AwaitingStock       session.WizardState = "awaiting_stock"
	AwaitingDescription session.WizardState = "awaiting_description"
	AwaitingPhoto       session.WizardState = "awaiting_photo"
	AwaitingConfirm     session.WizardState = "awaiting_confirm"
)

var prompts = map[session.WizardState]string{
	AwaitingID:          "Step 1/7. Send the product id (article):",
	AwaitingName:        "Step 2/7. Send the product name:",
	AwaitingCategory:    "Step 3/7. Send the category:",
	AwaitingPrice:       "Step 4/7. Send the price (for example 199.50 or 199,50):",
	AwaitingStock:       "Step 5/7. Send the stock quantity (whole number):",
	AwaitingDescription: "Step 6/7. Send the description:",
	AwaitingPhoto:       "Step 7/7. Send the photo URL, or \"none\" to skip:",
}

// Prompt returns the message that asks for the given step's input.
func Prompt(st session.WizardState) string { return prompts[st] }

// StepResult is the outcome of feeding one text message into the dialogue.
type StepResult struct {
	// Next is the step to store; equal to the current step when the input
	// was rejected.
	Next session.WizardState
	// Reply is what the bot should say: the next prompt on success, an
	// error plus the repeated prompt on rejection.
	Reply string
	// Accepted reports whether the input was stored into the draft.
	Accepted bool
}

func reject(st session.WizardState, reason string) StepResult {
	return StepResult{Next: st, Reply: reason + "\n" + prompts[st]}
}

func advance(next session.WizardState) StepResult {
	return StepResult{Next: next, Reply: prompts[next], Accepted: true}
}

// ApplyStep validates one text input against the current step and, when valid,
// writes it into the draft and moves to the next step. Rejected input leaves
// both the draft and the step untouched. The function has no I/O so the whole
// dialogue is testable without a bot; the confirm step itself is handled by
// callbacks, not here.
func ApplyStep(st session.WizardState, d *Draft, input string) StepResult {
	text := strings.TrimSpace(input)

	switch st {
	case AwaitingID:
		if text == "" {
			return reject(st, "The id must not be empty.")
		}
		d.ID = text
		return advance(AwaitingName)

	case AwaitingName:
		if text == "" {
			return reject(st, "The name must not be empty.")
		}
		d.Name = text
		return advance(AwaitingCategory)

	case AwaitingCategory:
		if text == "" {
			return reject(st, "The category must not be empty.")
		}
		d.Category = text
		return advance(AwaitingPrice)

	case AwaitingPrice:
		price, err := catalog.ParsePrice(text)
		if err != nil {
			return reject(st, "That is not a valid price.")
		}
		d.Price = price
		return advance(AwaitingStock)

	case AwaitingStock:
		stock, err := catalog.ParseStock(text)
		if err != nil {
			return reject(st, "That is not a valid quantity.")
		}
		d.Stock = stock
		return advance(AwaitingDescription)

	case AwaitingDescription:
		if text == "" {
			return reject(st, "The description must not be empty.")
		}
		d.Description = text
		return advance(AwaitingPhoto)

	case AwaitingPhoto:
		if strings.EqualFold(text, "none") {
			d.PhotoURL = ""
		} else if text == "" {
			return reject(st, "Send a URL or \"none\".")
		} else {
			d.PhotoURL = text
		}
		return StepResult{Next: AwaitingConfirm, Accepted: true}

	case AwaitingConfirm:
		// Text during confirmation is ignored; only the buttons decide.
		return StepResult{Next: st, Reply: "Use the buttons below to confirm or cancel."}
	}

	return StepResult{Next: session.WizardNone}
}
