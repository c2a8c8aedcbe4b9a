package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ariefcatur/go-pizza-bot/internal/bot"
	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

// Handler is the bot side of the transport.
type Handler interface {
	HandleCommand(ctx context.Context, c bot.Customer, cmd command.Command, src *notify.MessageRef) bot.Reply
	HandleInput(ctx context.Context, c bot.Customer, in bot.Input)
}

// Router translates updates: button callbacks and keyboard labels become
// commands, everything else is checkout input.
type Router struct {
	api    botAPI
	h      Handler
	layout *Layout
}

func NewRouter(api botAPI, h Handler, layout *Layout) *Router {
	return &Router{api: api, h: h, layout: layout}
}

var slashCommands = map[string]command.Kind{
	"start": command.Start,
	"menu":  command.Menu,
	"cart":  command.CartShow,
	"admin": command.AdminMenu,
}

func (r *Router) Handle(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		r.callback(ctx, u.CallbackQuery)
	case u.Message != nil:
		r.message(ctx, u.Message)
	}
}

func (r *Router) callback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil {
		return
	}
	cmd, err := command.Parse(q.Data)
	if err != nil {
		logger.Warnw("bad callback data", "user_id", q.From.ID, "data", q.Data, "error", err)
		r.answer(q.ID, bot.Reply{Text: "❌ This button is no longer valid.", Alert: true})
		return
	}

	var src *notify.MessageRef
	if m := q.Message; m != nil && m.Chat != nil {
		src = &notify.MessageRef{
			Chat:    notify.Target(m.Chat.ID),
			ID:      m.MessageID,
			Caption: len(m.Photo) > 0 || m.Document != nil,
		}
	}
	reply := r.h.HandleCommand(ctx, customer(q.From), cmd, src)
	r.answer(q.ID, reply)
}

// answer always acknowledges the callback so the button stops spinning.
func (r *Router) answer(id string, reply bot.Reply) {
	cb := tgbotapi.NewCallback(id, reply.Text)
	cb.ShowAlert = reply.Alert
	if _, err := r.api.Request(cb); err != nil {
		logger.Debugw("answer callback failed", "error", err)
	}
}

func (r *Router) message(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil || m.Chat == nil {
		return
	}
	c := customer(m.From)

	if m.IsCommand() {
		if kind, ok := slashCommands[m.Command()]; ok {
			r.command(ctx, c, m.Chat.ID, command.New(kind, "", ""))
			return
		}
	}
	if cmd, ok := r.layout.Command(strings.TrimSpace(m.Text)); ok && m.Text != "" {
		r.command(ctx, c, m.Chat.ID, cmd)
		return
	}

	in := bot.Input{Text: m.Text, SentAt: m.Time().UTC()}
	switch {
	case m.Contact != nil:
		in.Kind = bot.InputContact
		in.Phone = m.Contact.PhoneNumber
	case len(m.Photo) > 0:
		in.Kind = bot.InputPhoto
		in.FileID = m.Photo[len(m.Photo)-1].FileID
		in.Text = m.Caption
	case m.Document != nil:
		in.Kind = bot.InputDocument
		in.FileID = m.Document.FileID
		in.Text = m.Caption
	case m.Text != "":
		in.Kind = bot.InputText
	default:
		return
	}
	r.h.HandleInput(ctx, c, in)
}

// command runs a command that did not come from a button. Its reply has no
// callback to ride on, so it goes out as a message.
func (r *Router) command(ctx context.Context, c bot.Customer, chat int64, cmd command.Command) {
	reply := r.h.HandleCommand(ctx, c, cmd, nil)
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chat, reply.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.api.Send(msg); err != nil {
		logger.Warnw("send reply failed", "user_id", c.ID, "error", err)
	}
}

func customer(u *tgbotapi.User) bot.Customer {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return bot.Customer{ID: u.ID, Name: name}
}
