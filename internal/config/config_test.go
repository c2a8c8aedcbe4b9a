package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USER_ID", "1001")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/pizza")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KITCHEN_CHAT_ID", "")
	t.Setenv("WEBHOOK_BASE_URL", "")
	t.Setenv("RENDER_EXTERNAL_URL", "https://pizza.onrender.com/")
	t.Setenv("WEBHOOK_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1001), cfg.AdminID)
	assert.Zero(t, cfg.KitchenID)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "https://pizza.onrender.com", cfg.WebhookBase)
	assert.Equal(t, "menu_data.json", cfg.MenuFile)
	assert.Equal(t, "123:abc", cfg.WebhookSecret)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Optional(t *testing.T) {
	setRequired(t)
	t.Setenv("KITCHEN_CHAT_ID", "-100200300")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PORT", "9090")
	t.Setenv("WEBHOOK_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(-100200300), cfg.KitchenID)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "s3cret", cfg.WebhookSecret)
}

func TestLoad_Missing(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_TOKEN", "")
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissing)

	setRequired(t)
	t.Setenv("ADMIN_USER_ID", "")
	_, err = Load()
	assert.ErrorIs(t, err, ErrMissing)

	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.ErrorIs(t, err, ErrMissing)
}

func TestLoad_MalformedID(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_USER_ID", "boss")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEventLog(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := LoadEventLog()
	assert.ErrorIs(t, err, ErrMissing)

	t.Setenv("KAFKA_BROKERS", "k1:9092")
	t.Setenv("EVENTLOG_WORKERS", "")
	t.Setenv("EVENTLOG_GROUP", "")
	cfg, err := LoadEventLog()
	require.NoError(t, err)
	assert.Equal(t, "pizzabot-eventlog", cfg.Group)
	assert.Equal(t, 4, cfg.Workers)

	t.Setenv("EVENTLOG_WORKERS", "zero")
	_, err = LoadEventLog()
	assert.Error(t, err)
}
