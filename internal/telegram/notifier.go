// Package telegram adapts the Telegram Bot API to the notify contract and turns
// incoming updates into dispatcher calls.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

// botAPI is the part of *tgbotapi.BotAPI in use.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

var ErrNoName = errors.New("chat has no display name")

type Notifier struct {
	api    botAPI
	layout *Layout
}

func NewNotifier(api botAPI, layout *Layout) *Notifier {
	return &Notifier{api: api, layout: layout}
}

var (
	_ notify.Notifier  = (*Notifier)(nil)
	_ notify.Directory = (*Notifier)(nil)
)

func (n *Notifier) Send(_ context.Context, to notify.Target, msg notify.Message) (notify.MessageRef, error) {
	chat := int64(to)
	var c tgbotapi.Chattable
	if msg.Media == nil {
		m := tgbotapi.NewMessage(chat, msg.Text)
		m.ParseMode = tgbotapi.ModeHTML
		m.DisableWebPagePreview = true
		m.ReplyMarkup = n.layout.markup(msg)
		c = m
	} else {
		file := fileData(msg.Media)
		switch msg.Media.Kind {
		case notify.Document:
			d := tgbotapi.NewDocument(chat, file)
			d.Caption = msg.Text
			d.ParseMode = tgbotapi.ModeHTML
			d.ReplyMarkup = n.layout.markup(msg)
			c = d
		default:
			p := tgbotapi.NewPhoto(chat, file)
			p.Caption = msg.Text
			p.ParseMode = tgbotapi.ModeHTML
			p.ReplyMarkup = n.layout.markup(msg)
			c = p
		}
	}

	sent, err := n.api.Send(c)
	if err != nil {
		return notify.MessageRef{}, fmt.Errorf("send to %d: %w", chat, err)
	}
	return notify.MessageRef{Chat: to, ID: sent.MessageID, Caption: msg.Media != nil}, nil
}

// Edit replaces the text (or caption) and inline buttons of ref. Media and
// reply keyboards cannot be changed by an edit.
func (n *Notifier) Edit(_ context.Context, ref notify.MessageRef, msg notify.Message) error {
	chat := int64(ref.Chat)
	var markup *tgbotapi.InlineKeyboardMarkup
	if len(msg.Actions) > 0 {
		m := inlineMarkup(msg.Actions)
		markup = &m
	}

	var c tgbotapi.Chattable
	if ref.Caption {
		e := tgbotapi.NewEditMessageCaption(chat, ref.ID, msg.Text)
		e.ParseMode = tgbotapi.ModeHTML
		e.ReplyMarkup = markup
		c = e
	} else {
		e := tgbotapi.NewEditMessageText(chat, ref.ID, msg.Text)
		e.ParseMode = tgbotapi.ModeHTML
		e.DisableWebPagePreview = true
		e.ReplyMarkup = markup
		c = e
	}
	if _, err := n.api.Request(c); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("edit %d/%d: %w", chat, ref.ID, err)
	}
	return nil
}

func (n *Notifier) Delete(_ context.Context, ref notify.MessageRef) error {
	if _, err := n.api.Request(tgbotapi.NewDeleteMessage(int64(ref.Chat), ref.ID)); err != nil {
		return fmt.Errorf("delete %d/%d: %w", ref.Chat, ref.ID, err)
	}
	return nil
}

// DisplayName prefers @username and falls back to the full name.
func (n *Notifier) DisplayName(_ context.Context, who notify.Target) (string, error) {
	chat, err := n.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: int64(who)}})
	if err != nil {
		return "", fmt.Errorf("get chat %d: %w", who, err)
	}
	if chat.UserName != "" {
		return "@" + chat.UserName, nil
	}
	if name := strings.TrimSpace(chat.FirstName + " " + chat.LastName); name != "" {
		return name, nil
	}
	if chat.Title != "" {
		return chat.Title, nil
	}
	return "", ErrNoName
}

func fileData(m *notify.Media) tgbotapi.RequestFileData {
	if m.FileID != "" {
		return tgbotapi.FileID(m.FileID)
	}
	return tgbotapi.FileURL(m.URL)
}
