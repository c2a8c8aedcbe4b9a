package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/checkout"
	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

func cartView(c cart.Cart, table catalog.Ingredients) notify.Message {
	if c.Empty() {
		return notify.Text("🛒 Your cart is empty.")
	}
	var b strings.Builder
	b.WriteString("🛒 <b>Your order:</b>\n\n")
	var rows [][]notify.Action
	for _, l := range c.Lines {
		name := l.Name
		if l.Custom() {
			if desc := table.Describe(l.Details.Ingredients); desc != "" {
				name += " + " + desc
			}
		}
		fmt.Fprintf(&b, "• %s — <b>%s</b> × %d = <b>%s</b>\n",
			html.EscapeString(name), checkout.Money(l.UnitPrice), l.Quantity, checkout.Money(l.Amount()))

		ref := l.Ref()
		rows = append(rows, []notify.Action{
			notify.NewAction("➖", command.CartDecrement, ref, ""),
			notify.NewAction(strconv.Itoa(l.Quantity), command.Noop, "", ""),
			notify.NewAction("➕", command.CartIncrement, ref, ""),
			notify.NewAction("❌", command.CartRemove, ref, ""),
		})
	}
	fmt.Fprintf(&b, "\n📦 Items: <b>%s</b>\n", checkout.Money(c.Subtotal()))
	b.WriteString(checkout.DeliveryLine(c.DeliveryFee()) + "\n")
	fmt.Fprintf(&b, "\n<b>Total to pay: %s</b>", checkout.Money(c.Total()))

	rows = append(rows,
		[]notify.Action{notify.NewAction("✅ Checkout", command.CheckoutStart, "", "")},
		[]notify.Action{notify.NewAction("🗑 Clear cart", command.CartClear, "", "")},
	)
	return notify.Message{Text: b.String(), Actions: rows}
}

func (d *Dispatcher) changeLine(ctx context.Context, c Customer, cmd command.Command, src *notify.MessageRef) Reply {
	key, ok := d.carts.Get(c.ID).KeyForRef(cmd.Ref)
	if !ok {
		return Reply{Text: "❌ This item is no longer in your cart.", Alert: true}
	}
	var err error
	switch cmd.Kind {
	case command.CartIncrement:
		_, err = d.carts.Increment(c.ID, key)
	case command.CartDecrement:
		_, err = d.carts.Decrement(c.ID, key)
	case command.CartRemove:
		err = d.carts.Remove(c.ID, key)
	}
	if errors.Is(err, cart.ErrLineNotFound) {
		return Reply{Text: "❌ This item is no longer in your cart.", Alert: true}
	}
	if err != nil {
		logger.Errorw("cart update failed", "user_id", c.ID, "error", err)
		return Reply{Text: "❌ Something went wrong, please try again.", Alert: true}
	}
	d.show(ctx, c.ID, src, cartView(d.carts.Get(c.ID), d.builder.Ingredients()))
	return Reply{}
}

func (d *Dispatcher) startCheckout(ctx context.Context, c Customer) Reply {
	err := d.checkout.Start(ctx, c)
	if errors.Is(err, checkout.ErrEmptyCart) {
		d.send(ctx, c.ID, notify.Text("❌ Your cart is empty. Add something before checking out."))
		return Reply{Text: "❌ Your cart is empty.", Alert: true}
	}
	if err != nil {
		logger.Errorw("checkout start failed", "user_id", c.ID, "error", err)
		return Reply{Text: "❌ Something went wrong, please try again.", Alert: true}
	}
	return Reply{}
}

func (d *Dispatcher) pay(ctx context.Context, c Customer, method string) Reply {
	pm, err := checkout.ParsePaymentMethod(method)
	if err != nil {
		return Reply{Text: "❌ Unknown payment method.", Alert: true}
	}
	_, err = d.checkout.SubmitPayment(ctx, c, pm)
	switch {
	case err == nil:
		return Reply{}
	case errors.Is(err, checkout.ErrUnexpectedInput):
		return Reply{Text: "❌ This button is out of date. Start the checkout again from the cart.", Alert: true}
	case errors.Is(err, checkout.ErrEmptyCart):
		d.send(ctx, c.ID, notify.Message{Text: "❌ Your cart is empty. Please order again.", Keyboard: d.menuKeyboard(c.ID)})
	case errors.Is(err, checkout.ErrIncompleteSession):
		d.send(ctx, c.ID, notify.Message{Text: "❌ Some details are missing. Please start again.", Keyboard: d.menuKeyboard(c.ID)})
	case errors.Is(err, checkout.ErrPersistence):
		d.send(ctx, c.ID, notify.Message{
			Text:     "❌ We could not save your order. Your cart is kept, please try again in a minute.",
			Keyboard: d.menuKeyboard(c.ID),
		})
	default:
		logger.Errorw("payment step failed", "user_id", c.ID, "error", err)
		d.send(ctx, c.ID, notify.Text("❌ Something went wrong, please try again."))
	}
	return Reply{}
}

func aboutText(supportPhone string) string {
	return fmt.Sprintf("ℹ️ <b>About us and delivery</b>\n\n"+
		"We deliver hot pizza across the city.\n"+
		"Free delivery from %s.\n"+
		"Delivery costs %s for smaller orders.\n\n"+
		"Payment: cash to the courier or a bank transfer.\n\n"+
		"📞 Support: %s",
		checkout.Money(cart.FreeDeliveryFrom), checkout.Money(cart.DeliveryFee), html.EscapeString(supportPhone))
}
