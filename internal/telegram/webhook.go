package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SetWebhook points Telegram at base+path.
func SetWebhook(api botAPI, base, path string) (string, error) {
	url := base + path
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return "", fmt.Errorf("webhook url: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	return url, nil
}
