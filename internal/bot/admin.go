package bot

import (
	"context"
	"errors"
	"strconv"

	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/fulfillment"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

func adminMenu() notify.Message {
	return notify.Message{
		Text:    "🔐 <b>Admin panel</b>",
		Actions: [][]notify.Action{{notify.NewAction("📦 Active orders", command.AdminOrders, "", "")}},
	}
}

func (d *Dispatcher) adminOrders(ctx context.Context, c Customer, src *notify.MessageRef) Reply {
	msg, err := d.fulfillment.ActiveOrders(ctx)
	if err != nil {
		logger.Errorw("list active orders failed", "error", err)
		return Reply{Text: "❌ Database unavailable.", Alert: true}
	}
	d.show(ctx, c.ID, src, msg)
	return Reply{}
}

func (d *Dispatcher) adminOrder(ctx context.Context, c Customer, ref string, src *notify.MessageRef) Reply {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return Reply{Text: "❌ Invalid order id.", Alert: true}
	}
	msg, err := d.fulfillment.OrderView(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		return Reply{Text: "❌ Order #" + ref + " not found.", Alert: true}
	}
	if err != nil {
		logger.Errorw("load order failed", "order_id", id, "error", err)
		return Reply{Text: "❌ Database unavailable.", Alert: true}
	}
	d.show(ctx, c.ID, src, msg)
	return Reply{}
}

func (d *Dispatcher) adminStatus(ctx context.Context, cmd command.Command, src *notify.MessageRef) Reply {
	id, err := strconv.ParseInt(cmd.Ref, 10, 64)
	if err != nil {
		return Reply{Text: "❌ Invalid order id.", Alert: true}
	}
	target, err := orders.ParseStatus(cmd.Variant)
	if err != nil {
		return Reply{Text: "❌ Unknown status.", Alert: true}
	}

	_, err = d.fulfillment.Advance(ctx, id, target, src)
	switch {
	case err == nil:
		return Reply{Text: "✅ Status updated: " + target.Label()}
	case errors.Is(err, fulfillment.ErrInvalidTransition):
		return Reply{Text: "⚠️ This status change is not allowed.", Alert: true}
	case errors.Is(err, orders.ErrStatusConflict):
		return Reply{Text: "⚠️ The order changed meanwhile, open it again.", Alert: true}
	case errors.Is(err, orders.ErrNotFound):
		return Reply{Text: "❌ Order #" + cmd.Ref + " not found.", Alert: true}
	}
	logger.Errorw("status update failed", "order_id", id, "target", target, "error", err)
	return Reply{Text: "❌ Database unavailable.", Alert: true}
}
