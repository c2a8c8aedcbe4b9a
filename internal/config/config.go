package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	BotToken     string
	AdminID      int64
	KitchenID    int64 // 0: no kitchen chat
	CardNumber   string
	BankName     string
	SupportPhone string

	PostgresDSN   string
	HTTPAddr      string
	WebhookBase   string // empty: no webhook registration
	WebhookSecret string
	RedisAddr     string   // empty: no update dedup
	KafkaBrokers  []string // empty: events are dropped
	MenuFile      string

	ServiceName string
	LogMode     string
	LogDir      string
}

var ErrMissing = errors.New("missing required setting")

// Load reads the environment (a .env file is loaded by main beforehand).
func Load() (Config, error) {
	cfg := Config{
		BotToken:     os.Getenv("BOT_TOKEN"),
		CardNumber:   getenv("PAYMENT_CARD_NUMBER", "0000 0000 0000 0000"),
		BankName:     getenv("PAYMENT_BANK_NAME", "Bank"),
		SupportPhone: getenv("SUPPORT_PHONE", "+1 555 000 0000"),
		PostgresDSN:  os.Getenv("DATABASE_URL"),
		HTTPAddr:     ":" + getenv("PORT", "8000"),
		WebhookBase:  strings.TrimRight(getenv("WEBHOOK_BASE_URL", os.Getenv("RENDER_EXTERNAL_URL")), "/"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		MenuFile:     getenv("MENU_FILE", "menu_data.json"),
		ServiceName:  getenv("SERVICE_NAME", "pizzabot"),
		LogMode:      getenv("LOG_MODE", "release"),
		LogDir:       os.Getenv("LOG_DIR"),
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("%w: BOT_TOKEN", ErrMissing)
	}
	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("%w: DATABASE_URL", ErrMissing)
	}
	admin, err := parseID("ADMIN_USER_ID", true)
	if err != nil {
		return Config{}, err
	}
	cfg.AdminID = admin
	cfg.WebhookSecret = getenv("WEBHOOK_SECRET", cfg.BotToken)
	if cfg.KitchenID, err = parseID("KITCHEN_CHAT_ID", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseID accepts negative ids, group chats have them.
func parseID(key string, required bool) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		if required {
			return 0, fmt.Errorf("%w: %s", ErrMissing, key)
		}
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return id, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// EventLog is the configuration of the event log consumer.
type EventLog struct {
	KafkaBrokers []string
	Group        string
	Workers      int
	LogMode      string
	LogDir       string
}

func LoadEventLog() (EventLog, error) {
	cfg := EventLog{
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		Group:        getenv("EVENTLOG_GROUP", "pizzabot-eventlog"),
		Workers:      4,
		LogMode:      getenv("LOG_MODE", "release"),
		LogDir:       os.Getenv("LOG_DIR"),
	}
	if len(cfg.KafkaBrokers) == 0 {
		return EventLog{}, fmt.Errorf("%w: KAFKA_BROKERS", ErrMissing)
	}
	if v := os.Getenv("EVENTLOG_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return EventLog{}, fmt.Errorf("EVENTLOG_WORKERS: want a positive number, got %q", v)
		}
		cfg.Workers = n
	}
	return cfg, nil
}
