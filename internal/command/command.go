// Package command defines the structured commands the transport layer hands to
// the bot. Callback payloads are parsed into a Command once, at the boundary.
package command

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	Start    Kind = "start"
	Menu     Kind = "menu"
	Category Kind = "cat"
	AddItem  Kind = "add"

	BuilderToggle Kind = "bt"
	BuilderDone   Kind = "bd"
	BuilderCancel Kind = "bc"

	CartShow      Kind = "cart"
	CartIncrement Kind = "ci"
	CartDecrement Kind = "cd"
	CartRemove    Kind = "cr"
	CartClear     Kind = "cc"

	CheckoutStart Kind = "co"
	Pay           Kind = "pay"
	BackToCart    Kind = "bk"

	MyOrders Kind = "my"
	About    Kind = "about"

	AdminMenu   Kind = "adm"
	AdminOrders Kind = "ao"
	AdminOrder  Kind = "av"
	AdminStatus Kind = "as"

	Noop Kind = "noop"
)

const sep = ":"

var known = map[Kind]bool{
	Start: true, Menu: true, Category: true, AddItem: true,
	BuilderToggle: true, BuilderDone: true, BuilderCancel: true,
	CartShow: true, CartIncrement: true, CartDecrement: true, CartRemove: true, CartClear: true,
	CheckoutStart: true, Pay: true, BackToCart: true,
	MyOrders: true, About: true,
	AdminMenu: true, AdminOrders: true, AdminOrder: true, AdminStatus: true,
	Noop: true,
}

var (
	ErrEmpty       = errors.New("empty command")
	ErrUnknownKind = errors.New("unknown command kind")
	ErrMalformed   = errors.New("malformed command")
)

// Command is {action kind, target id, variant}. The target type is implied by
// the kind: a product ref for AddItem, an ingredient key for BuilderToggle, a
// cart line ref for the cart kinds, an order id for the admin kinds.
type Command struct {
	Kind    Kind
	Ref     string
	Variant string
}

func New(kind Kind, ref, variant string) Command {
	return Command{Kind: kind, Ref: ref, Variant: variant}
}

// Encode renders the command as "kind:ref:variant", dropping empty trailing parts.
func (c Command) Encode() string {
	switch {
	case c.Variant != "":
		return string(c.Kind) + sep + c.Ref + sep + c.Variant
	case c.Ref != "":
		return string(c.Kind) + sep + c.Ref
	default:
		return string(c.Kind)
	}
}

func (c Command) String() string { return c.Encode() }

// Parse is the inverse of Encode.
func Parse(s string) (Command, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Command{}, ErrEmpty
	}
	parts := strings.Split(s, sep)
	if len(parts) > 3 {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	c := Command{Kind: Kind(parts[0])}
	if !known[c.Kind] {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownKind, parts[0])
	}
	if len(parts) > 1 {
		c.Ref = parts[1]
	}
	if len(parts) > 2 {
		c.Variant = parts[2]
	}
	return c, nil
}

// Admin reports whether the kind is an operator action.
func (k Kind) Admin() bool {
	switch k {
	case AdminMenu, AdminOrders, AdminOrder, AdminStatus:
		return true
	}
	return false
}

// Builder reports whether the kind belongs to the custom pizza builder.
func (k Kind) Builder() bool {
	return k == BuilderToggle || k == BuilderDone || k == BuilderCancel
}

// Supersedes reports whether the command is customer navigation that cancels an
// in-progress checkout or builder session.
func (k Kind) Supersedes() bool {
	switch k {
	case Noop, Pay:
		return false
	}
	return !k.Admin() && !k.Builder()
}
