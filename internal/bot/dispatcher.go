// Package bot routes structured commands and free-form input from the transport
// to the ordering core, one user at a time.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-pizza-bot/internal/builder"
	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/checkout"
	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/fulfillment"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
	"github.com/ariefcatur/go-pizza-bot/internal/userlock"
)

type Customer = checkout.Customer

// Reply is the short acknowledgement for a button press. Alert asks the
// transport to show it as a popup.
type Reply struct {
	Text  string
	Alert bool
}

type InputKind int

const (
	InputText InputKind = iota + 1
	InputContact
	InputPhoto
	InputDocument
)

// Input is anything the customer sends that is not a command.
type Input struct {
	Kind   InputKind
	Text   string // message text or media caption
	Phone  string // shared contact
	FileID string // photo or document
	SentAt time.Time
}

type Config struct {
	AdminID      int64
	SupportPhone string
}

type Dispatcher struct {
	menu        *catalog.Menu
	carts       *cart.Store
	builder     *builder.Builder
	checkout    *checkout.Machine
	fulfillment *fulfillment.Controller
	notifier    notify.Notifier
	cfg         Config

	locks userlock.Locks

	// catalog cards on screen per user, removed on the next navigation
	activeMu sync.Mutex
	active   map[int64][]notify.MessageRef
}

func New(menu *catalog.Menu, carts *cart.Store, b *builder.Builder, co *checkout.Machine,
	f *fulfillment.Controller, n notify.Notifier, cfg Config) *Dispatcher {
	return &Dispatcher{
		menu:        menu,
		carts:       carts,
		builder:     b,
		checkout:    co,
		fulfillment: f,
		notifier:    n,
		cfg:         cfg,
		active:      make(map[int64][]notify.MessageRef),
	}
}

func (d *Dispatcher) IsAdmin(user int64) bool { return user == d.cfg.AdminID }

// HandleCommand runs one command. src is the message carrying the pressed
// button, nil when the command came from the reply keyboard or a slash command.
func (d *Dispatcher) HandleCommand(ctx context.Context, c Customer, cmd command.Command, src *notify.MessageRef) Reply {
	unlock := d.locks.Lock(c.ID)
	defer unlock()

	if cmd.Kind.Admin() && !d.IsAdmin(c.ID) {
		return Reply{Text: "⛔ Access denied.", Alert: true}
	}
	if cmd.Kind.Supersedes() {
		d.supersede(ctx, c, cmd.Kind)
	}

	switch cmd.Kind {
	case command.Start:
		return d.start(ctx, c)
	case command.Menu:
		return d.showMenu(ctx, c)
	case command.Category:
		return d.showCategory(ctx, c, cmd.Ref)
	case command.AddItem:
		return d.addItem(ctx, c, cmd, src)
	case command.BuilderToggle:
		return d.builderToggle(ctx, c, cmd.Ref, src)
	case command.BuilderDone:
		return d.builderDone(ctx, c, src)
	case command.BuilderCancel:
		return d.builderCancel(ctx, c, src)
	case command.CartShow, command.BackToCart:
		d.show(ctx, c.ID, nil, cartView(d.carts.Get(c.ID), d.builder.Ingredients()))
		return Reply{}
	case command.CartIncrement, command.CartDecrement, command.CartRemove:
		return d.changeLine(ctx, c, cmd, src)
	case command.CartClear:
		d.carts.Clear(c.ID)
		d.show(ctx, c.ID, src, notify.Text("🗑 Cart cleared."))
		return Reply{}
	case command.CheckoutStart:
		return d.startCheckout(ctx, c)
	case command.Pay:
		return d.pay(ctx, c, cmd.Ref)
	case command.MyOrders:
		return d.myOrders(ctx, c)
	case command.About:
		d.send(ctx, c.ID, notify.Text(aboutText(d.cfg.SupportPhone)))
		return Reply{}
	case command.AdminMenu:
		d.show(ctx, c.ID, src, adminMenu())
		return Reply{}
	case command.AdminOrders:
		return d.adminOrders(ctx, c, src)
	case command.AdminOrder:
		return d.adminOrder(ctx, c, cmd.Ref, src)
	case command.AdminStatus:
		return d.adminStatus(ctx, cmd, src)
	case command.Noop:
		return Reply{}
	}
	return Reply{Text: "❌ Unknown action.", Alert: true}
}

// supersede cancels whatever flow the customer walked away from.
func (d *Dispatcher) supersede(ctx context.Context, c Customer, kind command.Kind) {
	if kind != command.AddItem {
		d.builder.Discard(c.ID)
		d.clearActive(ctx, c.ID)
	}
	if kind == command.CheckoutStart {
		return
	}
	if d.checkout.Abort(c.ID) {
		logger.Infow("checkout abandoned", "user_id", c.ID, "by", string(kind))
		d.send(ctx, c.ID, notify.Message{Text: "❌ Checkout was cancelled.", Keyboard: d.menuKeyboard(c.ID)})
	}
}

func (d *Dispatcher) start(ctx context.Context, c Customer) Reply {
	d.send(ctx, c.ID, notify.Message{
		Text:     "🍕 <b>Welcome to Pizza Bot!</b>\nHot pizza delivered fast. Pick a section below.",
		Keyboard: d.menuKeyboard(c.ID),
	})
	return Reply{}
}

func (d *Dispatcher) myOrders(ctx context.Context, c Customer) Reply {
	msg, err := d.fulfillment.History(ctx, c.ID)
	if err != nil {
		logger.Errorw("load order history failed", "user_id", c.ID, "error", err)
		d.send(ctx, c.ID, notify.Text("❌ Could not load your orders, please try again later."))
		return Reply{}
	}
	d.send(ctx, c.ID, msg)
	return Reply{}
}

func (d *Dispatcher) menuKeyboard(user int64) notify.Keyboard {
	if d.IsAdmin(user) {
		return notify.AdminMainMenu
	}
	return notify.MainMenu
}

func (d *Dispatcher) send(ctx context.Context, user int64, msg notify.Message) (notify.MessageRef, bool) {
	ref, err := d.notifier.Send(ctx, notify.Target(user), msg)
	if err != nil {
		logger.Warnw("send failed", "user_id", user, "error", err)
		return notify.MessageRef{}, false
	}
	return ref, true
}

// show redraws src in place when possible, otherwise sends a new message.
func (d *Dispatcher) show(ctx context.Context, user int64, src *notify.MessageRef, msg notify.Message) {
	if src != nil && src.Valid() && msg.Media == nil && msg.Keyboard == notify.KeepKeyboard {
		err := d.notifier.Edit(ctx, *src, msg)
		if err == nil {
			return
		}
		logger.Debugw("edit failed, sending instead", "user_id", user, "error", err)
	}
	d.send(ctx, user, msg)
}

func (d *Dispatcher) track(user int64, refs ...notify.MessageRef) {
	d.activeMu.Lock()
	defer d.activeMu.Unlock()
	d.active[user] = append(d.active[user], refs...)
}

func (d *Dispatcher) clearActive(ctx context.Context, user int64) {
	d.activeMu.Lock()
	refs := d.active[user]
	delete(d.active, user)
	d.activeMu.Unlock()

	for _, ref := range refs {
		if err := d.notifier.Delete(ctx, ref); err != nil {
			logger.Debugw("delete card failed", "user_id", user, "message_id", ref.ID, "error", err)
		}
	}
}
