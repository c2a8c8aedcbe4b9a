package checkout

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

const currency = "₽"

func Money(v int) string { return fmt.Sprintf("%d%s", v, currency) }

// DeliveryLine renders the delivery fee, "free" when waived.
func DeliveryLine(fee int) string {
	if fee == 0 {
		return "🚚 Delivery: free"
	}
	return "🚚 Delivery: " + Money(fee)
}

func paymentPrompt(s Session) notify.Message {
	return notify.Message{
		Text: fmt.Sprintf("📍 Address: %s\n📞 Phone: <code>%s</code>\n\nChoose how you want to pay:",
			html.EscapeString(s.Address), html.EscapeString(s.Phone)),
		Actions: [][]notify.Action{
			{
				notify.NewAction(PaymentOnline.Label(), command.Pay, string(PaymentOnline), ""),
				notify.NewAction(PaymentCash.Label(), command.Pay, string(PaymentCash), ""),
			},
			{notify.NewAction("⬅️ Back to cart", command.BackToCart, "", "")},
		},
	}
}

func cashConfirmation(s Session, c cart.Cart) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>Order #%d accepted!</b>\n\n", s.OrderID)
	fmt.Fprintf(&b, "📍 Address: %s\n", html.EscapeString(s.Address))
	fmt.Fprintf(&b, "📞 Phone: %s\n", html.EscapeString(s.Phone))
	fmt.Fprintf(&b, "💳 Payment: %s\n", s.PaymentMethod.Label())
	writeTotals(&b, c)
	b.WriteString("\n🕒 Your pizza is already in the oven! 🍕")
	return notify.Text(b.String())
}

func onlineInstructions(orderID int64, c cart.Cart, cfg Config) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>Order #%d created!</b>\n\n", orderID)
	writeTotals(&b, c)
	fmt.Fprintf(&b, "\n💳 Transfer <b>%s</b> to the card:\n", Money(c.Total()))
	fmt.Fprintf(&b, "<b>%s</b>\n<code>%s</code>\n\n", html.EscapeString(cfg.BankName), html.EscapeString(cfg.CardNumber))
	fmt.Fprintf(&b, "📄 Payment reference: <b>Order #%d</b>\n\n", orderID)
	b.WriteString("Then send a screenshot or file of the receipt to this chat.\n")
	b.WriteString("❗ No receipt? Just write the payer's name or phone and the last 4 digits of the card, ")
	b.WriteString("the administrator will confirm the payment by hand.")
	return notify.Text(b.String())
}

func kitchenTicket(c Customer, s Session, crt cart.Cart, items []orders.Item) string {
	var b strings.Builder
	if crt.HasCustom() {
		b.WriteString("❗❗❗ <b>SPECIAL ORDER: BUILD YOUR OWN PIZZA</b> ❗❗❗\n\n")
	}
	fmt.Fprintf(&b, "🆕 <b>New order #%d</b>\n", s.OrderID)
	fmt.Fprintf(&b, "👤 Customer: %s\n", html.EscapeString(c.Name))
	fmt.Fprintf(&b, "🆔 ID: %d\n", c.ID)
	fmt.Fprintf(&b, "📍 Address: %s\n", html.EscapeString(s.Address))
	fmt.Fprintf(&b, "📞 Phone: %s\n", html.EscapeString(s.Phone))
	fmt.Fprintf(&b, "💳 Payment: %s\n", s.PaymentMethod.Label())
	writeTotals(&b, crt)
	b.WriteString("\n")
	WriteItems(&b, items)
	return b.String()
}

// captionLimit is how many characters a media caption may carry.
const captionLimit = 1024

// receiptCaption builds the admin copy of a receipt. With media attached the
// customer's text is clipped to fit a caption; clipped reports whether it was.
func receiptCaption(orderID int64, c Customer, r Receipt) (caption string, clipped bool) {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		text = "—"
	}
	head := fmt.Sprintf("🧾 <b>Payment confirmation for order #%d</b>\n"+
		"👤 Customer: %s\n"+
		"🆔 ID: %d\n"+
		"🕒 Time: %s UTC\n\n"+
		"<b>Message from the customer:</b>\n",
		orderID, html.EscapeString(c.Name), c.ID, r.SentAt.UTC().Format("02.01.2006 15:04"))
	body := html.EscapeString(text)
	if r.Media == nil || utf8.RuneCountInString(head+body) <= captionLimit {
		return head + body, false
	}
	return head + clip(text, captionLimit-utf8.RuneCountInString(head)), true
}

// clip escapes text and cuts it so the result, ellipsis included, is at most
// n runes long.
func clip(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n-1 {
		runes = runes[:max(n-1, 0)]
	}
	for ; len(runes) > 0; runes = runes[:len(runes)-1] {
		if out := html.EscapeString(string(runes)) + "…"; utf8.RuneCountInString(out) <= n {
			return out
		}
	}
	return ""
}

func receiptFullText(orderID int64, text string) string {
	return fmt.Sprintf("🧾 <b>Full message for order #%d:</b>\n%s", orderID, html.EscapeString(strings.TrimSpace(text)))
}

func writeTotals(b *strings.Builder, c cart.Cart) {
	fmt.Fprintf(b, "📦 Items: <b>%s</b>\n", Money(c.Subtotal()))
	b.WriteString(DeliveryLine(c.DeliveryFee()) + "\n")
	fmt.Fprintf(b, "<b>Total: %s</b>\n", Money(c.Total()))
}

// WriteItems lists order items as "• name ×qty — amount".
func WriteItems(b *strings.Builder, items []orders.Item) {
	for _, it := range items {
		fmt.Fprintf(b, "• %s ×%d — %s\n", html.EscapeString(it.Name), it.Quantity, Money(it.Price*it.Quantity))
	}
}
