// Package notify is the outbound side of the chat transport as the core sees it.
package notify

import (
	"context"

	"github.com/ariefcatur/go-pizza-bot/internal/command"
)

// Target is a chat id: a customer, the kitchen channel or the admin.
type Target int64

// MessageRef points at a message sent earlier. Caption is set when the message
// carries media, so edits must go to the caption instead of the text.
type MessageRef struct {
	Chat    Target
	ID      int
	Caption bool
}

func (r MessageRef) Valid() bool { return r.Chat != 0 && r.ID != 0 }

type MediaKind int

const (
	Photo MediaKind = iota + 1
	Document
)

// Media is either a transport file id or a public URL.
type Media struct {
	Kind   MediaKind
	FileID string
	URL    string
}

// Action is a button that sends Command back when pressed.
type Action struct {
	Label   string
	Command command.Command
}

func NewAction(label string, kind command.Kind, ref, variant string) Action {
	return Action{Label: label, Command: command.New(kind, ref, variant)}
}

// Keyboard selects the persistent reply keyboard shown under the input field.
type Keyboard int

const (
	KeepKeyboard Keyboard = iota
	MainMenu
	AdminMainMenu
	RequestContact
)

type Message struct {
	Text     string
	Media    *Media
	Actions  [][]Action
	Keyboard Keyboard
}

// Text is shorthand for a plain text message.
func Text(s string) Message { return Message{Text: s} }

type Notifier interface {
	Send(ctx context.Context, to Target, msg Message) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, msg Message) error
	Delete(ctx context.Context, ref MessageRef) error
}

// Directory resolves a display name for a chat. Transports implement it when
// they can.
type Directory interface {
	DisplayName(ctx context.Context, who Target) (string, error)
}
