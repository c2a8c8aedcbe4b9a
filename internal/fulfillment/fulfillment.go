// Package fulfillment lets the operator move orders through their statuses and
// keeps the customer informed.
package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

var ErrInvalidTransition = errors.New("status change not allowed")

const (
	// ActiveWindow is how many recent orders the operator list scans.
	ActiveWindow = 20
	// HistoryLimit is how many orders a customer sees under "My orders".
	HistoryLimit = 5
)

type Controller struct {
	store    orders.Store
	notifier notify.Notifier
	names    notify.Directory // optional
	events   orders.EventSink
}

func New(store orders.Store, n notify.Notifier, names notify.Directory, events orders.EventSink) *Controller {
	if events == nil {
		events = orders.NopEvents{}
	}
	return &Controller{store: store, notifier: n, names: names, events: events}
}

// Advance moves an order to target. An invalid target changes nothing and sends
// nothing. When view points at the operator's order card, it is redrawn.
func (c *Controller) Advance(ctx context.Context, orderID int64, target orders.Status, view *notify.MessageRef) (orders.Order, error) {
	o, err := c.store.Get(ctx, orderID)
	if err != nil {
		return orders.Order{}, err
	}
	if !orders.CanTransition(o.Status, target) {
		return o, fmt.Errorf("%w: order %d is %s, cannot become %s", ErrInvalidTransition, o.ID, o.Status, target)
	}

	from := o.Status
	userID, err := c.store.UpdateStatus(ctx, o.ID, from, target)
	if err != nil {
		return o, fmt.Errorf("update order %d: %w", o.ID, err)
	}
	o.Status = target
	o.UserID = userID
	logger.Infow("order status changed", "order_id", o.ID, "from", from, "to", target)
	c.events.StatusChanged(ctx, orders.StatusChangedPayload{OrderID: o.ID, UserID: userID, From: from, To: target})

	// the stored status stands even if the customer cannot be reached
	if _, err := c.notifier.Send(ctx, notify.Target(userID), notify.Text(CustomerUpdate(o.ID, target))); err != nil {
		logger.Warnw("status notification failed", "order_id", o.ID, "user_id", userID, "error", err)
	}

	if view != nil && view.Valid() {
		if err := c.notifier.Edit(ctx, *view, c.detail(ctx, o)); err != nil {
			logger.Warnw("refresh order view failed", "order_id", o.ID, "error", err)
		}
	}
	return o, nil
}

// CustomerUpdate is the text a customer gets when their order reaches status.
func CustomerUpdate(orderID int64, status orders.Status) string {
	var msg string
	switch status {
	case orders.StatusCooking:
		msg = "your pizza is already in the oven! 🍕"
	case orders.StatusDelivery:
		msg = "the courier is on the way to you! 🚚"
	case orders.StatusDone:
		msg = "your order is complete. Thank you! ✅"
	case orders.StatusCancelled:
		msg = "your order was cancelled. Sorry for the inconvenience."
	default:
		msg = "status changed to " + status.Label()
	}
	return fmt.Sprintf("🔄 Order #%d update: %s", orderID, msg)
}

// OrderView renders one order with buttons for its allowed next statuses.
func (c *Controller) OrderView(ctx context.Context, orderID int64) (notify.Message, error) {
	o, err := c.store.Get(ctx, orderID)
	if err != nil {
		return notify.Message{}, err
	}
	return c.detail(ctx, o), nil
}

// ActiveOrders lists the non-terminal orders among the latest ActiveWindow.
func (c *Controller) ActiveOrders(ctx context.Context) (notify.Message, error) {
	recent, err := c.store.ListAll(ctx, ActiveWindow)
	if err != nil {
		return notify.Message{}, fmt.Errorf("list orders: %w", err)
	}
	return activeList(recent), nil
}

// History renders the customer's latest orders.
func (c *Controller) History(ctx context.Context, userID int64) (notify.Message, error) {
	mine, err := c.store.ListByUser(ctx, userID, HistoryLimit)
	if err != nil {
		return notify.Message{}, fmt.Errorf("list orders of %d: %w", userID, err)
	}
	return history(mine), nil
}

func (c *Controller) displayName(ctx context.Context, userID int64) string {
	if c.names != nil {
		if name, err := c.names.DisplayName(ctx, notify.Target(userID)); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("ID: %d", userID)
}

func (c *Controller) detail(ctx context.Context, o orders.Order) notify.Message {
	return orderDetail(o, c.displayName(ctx, o.UserID))
}
