// Package builder runs the build-your-own pizza sub-flow. A session lives from
// the moment the customer picks the custom pizza until Done or Cancel.
package builder

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/userlock"
)

var (
	ErrNoSession         = errors.New("no custom pizza in progress")
	ErrUnknownIngredient = errors.New("unknown ingredient")
)

// LineAdder is the part of the cart store the builder needs.
type LineAdder interface {
	Add(user int64, key, name string, unitPrice, qty int, details *cart.Details) error
}

type Session struct {
	Size        catalog.Size
	BasePrice   int
	Ingredients map[string]int
}

func (s Session) Price(table catalog.Ingredients) int {
	return s.BasePrice + table.Extra(s.Ingredients)
}

type Builder struct {
	carts    LineAdder
	table    catalog.Ingredients
	locks    userlock.Locks
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func New(carts LineAdder, table catalog.Ingredients) *Builder {
	return &Builder{
		carts:    carts,
		table:    table,
		sessions: make(map[int64]*Session),
	}
}

func (b *Builder) Ingredients() catalog.Ingredients { return b.table }

// Begin starts a fresh session, replacing any previous one.
func (b *Builder) Begin(user int64, size catalog.Size, basePrice int) Session {
	unlock := b.locks.Lock(user)
	defer unlock()
	s := &Session{Size: size, BasePrice: basePrice, Ingredients: map[string]int{}}
	b.put(user, s)
	return s.snapshot()
}

// Toggle flips an ingredient between 0 and one portion.
func (b *Builder) Toggle(user int64, ingredient string) (Session, int, error) {
	if _, ok := b.table.Lookup(ingredient); !ok {
		return Session{}, 0, fmt.Errorf("%w: %q", ErrUnknownIngredient, ingredient)
	}
	unlock := b.locks.Lock(user)
	defer unlock()

	s, ok := b.get(user)
	if !ok {
		return Session{}, 0, ErrNoSession
	}
	grams := catalog.GramStep
	if s.Ingredients[ingredient] > 0 {
		grams = 0
	}
	s.Ingredients[ingredient] = grams
	return s.snapshot(), grams, nil
}

// Done prices the session, adds it to the cart and ends the session.
func (b *Builder) Done(user int64) (cart.Line, error) {
	unlock := b.locks.Lock(user)
	defer unlock()

	s, ok := b.get(user)
	if !ok {
		return cart.Line{}, ErrNoSession
	}
	picked := make(map[string]int, len(s.Ingredients))
	for k, g := range s.Ingredients {
		if g > 0 {
			picked[k] = g
		}
	}
	line := cart.Line{
		Key:       cart.CustomKey(string(s.Size), picked),
		Name:      Name(s.Size),
		UnitPrice: s.Price(b.table),
		Quantity:  1,
		Details:   &cart.Details{Size: string(s.Size), Ingredients: picked},
	}
	if err := b.carts.Add(user, line.Key, line.Name, line.UnitPrice, line.Quantity, line.Details); err != nil {
		return cart.Line{}, fmt.Errorf("add custom pizza: %w", err)
	}
	b.drop(user)
	return line, nil
}

func (b *Builder) Cancel(user int64) error {
	unlock := b.locks.Lock(user)
	defer unlock()
	if !b.drop(user) {
		return ErrNoSession
	}
	return nil
}

// Discard ends the session if there is one and reports whether it existed.
func (b *Builder) Discard(user int64) bool {
	unlock := b.locks.Lock(user)
	defer unlock()
	return b.drop(user)
}

func (b *Builder) Session(user int64) (Session, bool) {
	unlock := b.locks.Lock(user)
	defer unlock()
	s, ok := b.get(user)
	if !ok {
		return Session{}, false
	}
	return s.snapshot(), true
}

// Name is the display name of a custom pizza line.
func Name(size catalog.Size) string {
	if l := size.Label(); l != "" {
		return "🍕 Build your own (" + l + ")"
	}
	return "🍕 Build your own"
}

func (s *Session) snapshot() Session {
	return Session{Size: s.Size, BasePrice: s.BasePrice, Ingredients: maps.Clone(s.Ingredients)}
}

func (b *Builder) get(user int64) (*Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.sessions[user]
	return s, ok
}

func (b *Builder) put(user int64, s *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[user] = s
}

func (b *Builder) drop(user int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[user]
	delete(b.sessions, user)
	return ok
}
