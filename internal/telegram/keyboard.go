package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

const (
	LabelCart    = "🛒 Cart"
	LabelOrders  = "📍 My orders"
	LabelAbout   = "ℹ️ About / Delivery"
	LabelAdmin   = "🔐 Admin"
	LabelContact = "📱 Share phone number"
)

// Layout is the persistent reply keyboard. Its button labels come back as plain
// text messages, so the layout also maps them to commands.
type Layout struct {
	rows     [][]string
	admin    []string
	commands map[string]command.Command
}

func NewLayout(menu *catalog.Menu) *Layout {
	l := &Layout{commands: map[string]command.Command{
		LabelCart:   command.New(command.CartShow, "", ""),
		LabelOrders: command.New(command.MyOrders, "", ""),
		LabelAbout:  command.New(command.About, "", ""),
		LabelAdmin:  command.New(command.AdminMenu, "", ""),
	}}

	var row []string
	for _, c := range menu.Categories {
		l.commands[c.Title] = command.New(command.Category, c.ID, "")
		row = append(row, c.Title)
		if len(row) == 2 {
			l.rows = append(l.rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		l.rows = append(l.rows, row)
	}
	l.rows = append(l.rows, []string{LabelCart, LabelOrders}, []string{LabelAbout})
	l.admin = []string{LabelAdmin}
	return l
}

// Command maps a reply keyboard label to its command.
func (l *Layout) Command(text string) (command.Command, bool) {
	c, ok := l.commands[text]
	return c, ok
}

// markup picks the reply markup for msg. Inline actions win over a reply
// keyboard; a message can carry only one of them.
func (l *Layout) markup(msg notify.Message) any {
	if len(msg.Actions) > 0 {
		return inlineMarkup(msg.Actions)
	}
	switch msg.Keyboard {
	case notify.MainMenu:
		return l.reply(false)
	case notify.AdminMainMenu:
		return l.reply(true)
	case notify.RequestContact:
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(LabelContact)))
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		return kb
	}
	return nil
}

func (l *Layout) reply(admin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(l.rows)+1)
	for _, labels := range l.rows {
		rows = append(rows, buttons(labels))
	}
	if admin {
		rows = append(rows, buttons(l.admin))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func buttons(labels []string) []tgbotapi.KeyboardButton {
	out := make([]tgbotapi.KeyboardButton, 0, len(labels))
	for _, s := range labels {
		out = append(out, tgbotapi.NewKeyboardButton(s))
	}
	return out
}

func inlineMarkup(actions [][]notify.Action) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, r := range actions {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, a := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Command.Encode()))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
