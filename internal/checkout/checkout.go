// Package checkout runs the address, phone, payment and receipt conversation
// that turns a cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
	"github.com/ariefcatur/go-pizza-bot/internal/userlock"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnexpectedInput   = errors.New("input does not match the checkout step")
	ErrEmptyAddress      = errors.New("address is empty")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrUnknownPayment    = errors.New("unknown payment method")
	ErrIncompleteSession = errors.New("address or phone missing")
	ErrPersistence       = errors.New("order could not be saved")
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentOnline, PaymentCash:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPayment, s)
}

func (p PaymentMethod) Label() string { return orders.PaymentLabel(string(p)) }

// Carts is the part of the cart store checkout reads and clears.
type Carts interface {
	Get(user int64) cart.Cart
	Clear(user int64)
}

type Customer struct {
	ID   int64
	Name string
}

type Receipt struct {
	Text   string
	Media  *notify.Media
	SentAt time.Time
}

type Session struct {
	State         State
	Address       string
	Phone         string
	PaymentMethod PaymentMethod
	OrderID       int64
}

type Config struct {
	AdminID      int64
	KitchenID    int64 // 0 disables the kitchen fan-out
	BankName     string
	CardNumber   string
	SupportPhone string
}

type Machine struct {
	carts       Carts
	store       orders.Store
	notifier    notify.Notifier
	ingredients catalog.Ingredients
	cfg         Config
	events      orders.EventSink
	now         func() time.Time

	locks    userlock.Locks
	mu       sync.RWMutex
	sessions map[int64]*Session
}

type Option func(*Machine)

func WithEvents(sink orders.EventSink) Option { return func(m *Machine) { m.events = sink } }

func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

func New(carts Carts, store orders.Store, n notify.Notifier, ingredients catalog.Ingredients, cfg Config, opts ...Option) *Machine {
	m := &Machine{
		carts:       carts,
		store:       store,
		notifier:    n,
		ingredients: ingredients,
		cfg:         cfg,
		events:      orders.NopEvents{},
		now:         time.Now,
		sessions:    make(map[int64]*Session),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) State(user int64) State {
	unlock := m.locks.Lock(user)
	defer unlock()
	if s, ok := m.get(user); ok {
		return s.State
	}
	return Idle
}

func (m *Machine) Session(user int64) (Session, bool) {
	unlock := m.locks.Lock(user)
	defer unlock()
	s, ok := m.get(user)
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Abort drops the session and reports whether one was in progress.
func (m *Machine) Abort(user int64) bool {
	unlock := m.locks.Lock(user)
	defer unlock()
	return m.drop(user)
}

func (m *Machine) Start(ctx context.Context, c Customer) error {
	unlock := m.locks.Lock(c.ID)
	defer unlock()

	if m.carts.Get(c.ID).Empty() {
		return ErrEmptyCart
	}
	to, _ := next(m.state(c.ID), onStart)
	m.put(c.ID, &Session{State: to})
	m.send(ctx, c.ID, notify.Text("📍 Enter the delivery address:"))
	return nil
}

func (m *Machine) SubmitAddress(ctx context.Context, c Customer, text string) error {
	unlock := m.locks.Lock(c.ID)
	defer unlock()

	s, to, err := m.advance(c.ID, onAddress)
	if err != nil {
		return err
	}
	address := strings.TrimSpace(text)
	if address == "" {
		return ErrEmptyAddress
	}
	s.Address = address
	s.State = to
	m.send(ctx, c.ID, notify.Message{
		Text:     "📞 Share your phone number with the button below or type it in:",
		Keyboard: notify.RequestContact,
	})
	return nil
}

// SubmitPhone takes a shared contact (trusted as is) or typed text.
func (m *Machine) SubmitPhone(ctx context.Context, c Customer, phone string, shared bool) error {
	unlock := m.locks.Lock(c.ID)
	defer unlock()

	s, to, err := m.advance(c.ID, onPhone)
	if err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if (shared && phone == "") || (!shared && !ValidPhone(phone)) {
		return ErrInvalidPhone
	}
	s.Phone = phone
	s.State = to

	m.send(ctx, c.ID, notify.Message{
		Text:     fmt.Sprintf("✅ Phone <code>%s</code> received.", html.EscapeString(phone)),
		Keyboard: m.menuKeyboard(c.ID),
	})
	m.send(ctx, c.ID, paymentPrompt(*s))
	return nil
}

// SubmitPayment creates the order. The returned id is 0 on any error.
func (m *Machine) SubmitPayment(ctx context.Context, c Customer, method PaymentMethod) (int64, error) {
	unlock := m.locks.Lock(c.ID)
	defer unlock()

	var on input
	switch method {
	case PaymentCash:
		on = onCashPayment
	case PaymentOnline:
		on = onOnlinePayment
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPayment, method)
	}
	s, to, err := m.advance(c.ID, on)
	if err != nil {
		return 0, err
	}

	crt := m.carts.Get(c.ID)
	if crt.Empty() {
		m.drop(c.ID)
		return 0, ErrEmptyCart
	}
	if s.Address == "" || s.Phone == "" {
		m.drop(c.ID)
		return 0, ErrIncompleteSession
	}

	items := m.snapshot(crt)
	id, err := m.store.Create(ctx, orders.NewOrder{
		UserID:        c.ID,
		Items:         items,
		Total:         crt.Total(),
		Address:       s.Address,
		Phone:         s.Phone,
		PaymentMethod: string(method),
	})
	if err != nil {
		logger.Errorw("save order failed", "user_id", c.ID, "error", err)
		m.drop(c.ID)
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	logger.Infow("order created", "order_id", id, "user_id", c.ID, "total", crt.Total(),
		"payment_method", method)

	s.PaymentMethod = method
	s.OrderID = id
	if method == PaymentCash {
		m.carts.Clear(c.ID)
		m.drop(c.ID)
		m.send(ctx, c.ID, cashConfirmation(*s, crt))
	} else {
		s.State = to
		m.send(ctx, c.ID, onlineInstructions(id, crt, m.cfg))
	}

	m.notifyKitchen(ctx, c, *s, crt, items)
	m.events.OrderCreated(ctx, orders.OrderCreatedPayload{
		OrderID:       id,
		UserID:        c.ID,
		Items:         items,
		Total:         crt.Total(),
		PaymentMethod: string(method),
		Custom:        crt.HasCustom(),
	})

	if method == PaymentCash {
		m.send(ctx, c.ID, notify.Message{Text: "🙏 Thank you for your order! 🍕", Keyboard: m.menuKeyboard(c.ID)})
	}
	return id, nil
}

// SubmitReceipt forwards proof of payment to the admin. The cart and session are
// cleared whether or not the forward went through.
func (m *Machine) SubmitReceipt(ctx context.Context, c Customer, r Receipt) error {
	unlock := m.locks.Lock(c.ID)
	defer unlock()

	s, _, err := m.advance(c.ID, onReceipt)
	if err != nil {
		return err
	}
	orderID := s.OrderID
	defer func() {
		m.carts.Clear(c.ID)
		m.drop(c.ID)
	}()

	caption, clipped := receiptCaption(orderID, c, r)
	_, err = m.notifier.Send(ctx, notify.Target(m.cfg.AdminID), notify.Message{Text: caption, Media: r.Media})
	if err == nil && clipped {
		_, err = m.notifier.Send(ctx, notify.Target(m.cfg.AdminID), notify.Text(receiptFullText(orderID, r.Text)))
	}
	if err != nil {
		logger.Errorw("forward receipt failed", "order_id", orderID, "user_id", c.ID, "error", err)
		m.send(ctx, c.ID, notify.Text(fmt.Sprintf(
			"❌ Could not pass your payment details on. Please contact support: %s", m.cfg.SupportPhone)))
	} else {
		m.send(ctx, c.ID, notify.Text("✅ Got it! The administrator will check the payment and confirm your order."))
	}
	m.send(ctx, c.ID, notify.Message{Text: "🙏 Thank you for your order! 🍕", Keyboard: m.menuKeyboard(c.ID)})
	return nil
}

// snapshot freezes the cart into order items. Custom pizzas carry their
// ingredient breakdown in the name.
func (m *Machine) snapshot(c cart.Cart) []orders.Item {
	items := make([]orders.Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		name := l.Name
		if l.Custom() {
			if desc := m.ingredients.Describe(l.Details.Ingredients); desc != "" {
				name += " + " + desc
			}
		}
		items = append(items, orders.Item{Name: name, Price: l.UnitPrice, Quantity: l.Quantity})
	}
	return items
}

func (m *Machine) notifyKitchen(ctx context.Context, c Customer, s Session, crt cart.Cart, items []orders.Item) {
	if m.cfg.KitchenID == 0 {
		return
	}
	msg := notify.Text(kitchenTicket(c, s, crt, items))
	if _, err := m.notifier.Send(ctx, notify.Target(m.cfg.KitchenID), msg); err != nil {
		logger.Errorw("kitchen notification failed", "order_id", s.OrderID, "error", err)
	}
}

func (m *Machine) menuKeyboard(user int64) notify.Keyboard {
	if user == m.cfg.AdminID {
		return notify.AdminMainMenu
	}
	return notify.MainMenu
}

func (m *Machine) send(ctx context.Context, user int64, msg notify.Message) {
	if _, err := m.notifier.Send(ctx, notify.Target(user), msg); err != nil {
		logger.Warnw("send to customer failed", "user_id", user, "error", err)
	}
}

// advance checks the transition table; callers hold the user's lock.
func (m *Machine) advance(user int64, on input) (*Session, State, error) {
	s, ok := m.get(user)
	from := Idle
	if ok {
		from = s.State
	}
	to, ok := next(from, on)
	if !ok || s == nil {
		return nil, from, fmt.Errorf("%w: %s while %s", ErrUnexpectedInput, on, from)
	}
	return s, to, nil
}

func (m *Machine) state(user int64) State {
	if s, ok := m.get(user); ok {
		return s.State
	}
	return Idle
}

func (m *Machine) get(user int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[user]
	return s, ok
}

func (m *Machine) put(user int64, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[user] = s
}

func (m *Machine) drop(user int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[user]
	delete(m.sessions, user)
	return ok
}

// ValidPhone accepts a leading digit or '+', then digits, spaces, dashes and
// parentheses, at least 10 characters in all.
func ValidPhone(s string) bool {
	if len(s) < 10 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case i == 0 && r == '+':
		case i > 0 && (r == ' ' || r == '-' || r == '(' || r == ')'):
		default:
			return false
		}
	}
	return true
}
