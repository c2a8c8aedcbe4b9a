package fulfillment

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

func orderDetail(o orders.Order, customer string) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Order #%d</b>\n\n", o.ID)
	fmt.Fprintf(&b, "👤 Customer: %s\n", html.EscapeString(customer))
	fmt.Fprintf(&b, "📞 Phone: %s\n", html.EscapeString(o.Phone))
	fmt.Fprintf(&b, "📍 Address: %s\n", html.EscapeString(o.Address))
	fmt.Fprintf(&b, "💳 Payment: %s\n", html.EscapeString(orders.PaymentLabel(o.PaymentMethod)))
	fmt.Fprintf(&b, "🔄 Status: %s\n", o.Status.Label())
	fmt.Fprintf(&b, "🕗 Time: %s UTC\n", o.CreatedAt.UTC().Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "💰 Total: %d₽\n\n<b>Items:</b>\n", o.Total)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s ×%d\n", html.EscapeString(it.Name), it.Quantity)
	}

	id := strconv.FormatInt(o.ID, 10)
	var rows [][]notify.Action
	var row []notify.Action
	for _, next := range orders.Allowed(o.Status) {
		row = append(row, notify.NewAction(next.Label(), command.AdminStatus, id, string(next)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []notify.Action{notify.NewAction("⬅️ Active orders", command.AdminOrders, "", "")})
	return notify.Message{Text: b.String(), Actions: rows}
}

func activeList(recent []orders.Order) notify.Message {
	var rows [][]notify.Action
	for _, o := range recent {
		if o.Status.Terminal() {
			continue
		}
		label := fmt.Sprintf("%s Order #%d (%d₽)", o.Status.Emoji(), o.ID, o.Total)
		rows = append(rows, []notify.Action{
			notify.NewAction(label, command.AdminOrder, strconv.FormatInt(o.ID, 10), ""),
		})
	}
	text := "📦 <b>Active orders:</b>"
	if len(rows) == 0 {
		text = "📭 No active orders."
	}
	rows = append(rows, []notify.Action{notify.NewAction("⬅️ Back", command.AdminMenu, "", "")})
	return notify.Message{Text: text, Actions: rows}
}

func history(mine []orders.Order) notify.Message {
	if len(mine) == 0 {
		return notify.Text("📋 You have no orders yet.")
	}
	var b strings.Builder
	b.WriteString("📋 <b>Your latest orders:</b>\n\n")
	for _, o := range mine {
		fmt.Fprintf(&b, "• <b>Order #%d</b> — %s (%d₽)\n", o.ID, o.Status.Label(), o.Total)
	}
	return notify.Text(b.String())
}
