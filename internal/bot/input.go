package bot

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-pizza-bot/internal/checkout"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

// HandleInput feeds free-form input to the checkout step waiting for it.
func (d *Dispatcher) HandleInput(ctx context.Context, c Customer, in Input) {
	unlock := d.locks.Lock(c.ID)
	defer unlock()

	var err error
	switch d.checkout.State(c.ID) {
	case checkout.WaitingForAddress:
		if in.Kind != InputText {
			d.send(ctx, c.ID, notify.Text("📍 Please type the delivery address."))
			return
		}
		err = d.checkout.SubmitAddress(ctx, c, in.Text)
	case checkout.WaitingForPhone:
		switch in.Kind {
		case InputContact:
			err = d.checkout.SubmitPhone(ctx, c, in.Phone, true)
		case InputText:
			err = d.checkout.SubmitPhone(ctx, c, in.Text, false)
		default:
			d.send(ctx, c.ID, notify.Message{Text: "📞 Please share or type your phone number.", Keyboard: notify.RequestContact})
			return
		}
	case checkout.WaitingForPayment:
		d.send(ctx, c.ID, notify.Text("💳 Please choose a payment method with the buttons above."))
		return
	case checkout.WaitingForReceipt:
		err = d.checkout.SubmitReceipt(ctx, c, receipt(in))
	default:
		d.send(ctx, c.ID, notify.Message{Text: "📂 Please use the menu below.", Keyboard: d.menuKeyboard(c.ID)})
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmptyAddress):
		d.send(ctx, c.ID, notify.Text("❌ The address cannot be empty. Please type it again:"))
	case errors.Is(err, checkout.ErrInvalidPhone):
		d.send(ctx, c.ID, notify.Message{
			Text:     "❌ Invalid number format. Enter it like +7XXXXXXXXXX:",
			Keyboard: notify.RequestContact,
		})
	case errors.Is(err, checkout.ErrUnexpectedInput):
		d.send(ctx, c.ID, notify.Message{Text: "❌ Your checkout expired, please start again.", Keyboard: d.menuKeyboard(c.ID)})
	default:
		logger.Errorw("checkout input failed", "user_id", c.ID, "error", err)
		d.send(ctx, c.ID, notify.Text("❌ Something went wrong, please try again."))
	}
}

func receipt(in Input) checkout.Receipt {
	r := checkout.Receipt{Text: in.Text, SentAt: in.SentAt}
	switch in.Kind {
	case InputPhoto:
		r.Media = &notify.Media{Kind: notify.Photo, FileID: in.FileID}
	case InputDocument:
		r.Media = &notify.Media{Kind: notify.Document, FileID: in.FileID}
	case InputContact:
		if r.Text == "" {
			r.Text = in.Phone
		}
	}
	return r
}
