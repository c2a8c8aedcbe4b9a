package httpx

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ariefcatur/go-pizza-bot/internal/logger"
)

// UpdateHandler processes one Telegram update.
type UpdateHandler interface {
	Handle(ctx context.Context, u tgbotapi.Update)
}

// Deduper reports whether an update id is new.
type Deduper interface {
	First(ctx context.Context, id string) (bool, error)
}

// WebhookHandler receives Telegram updates. It answers 200 to everything it
// accepted, otherwise Telegram keeps redelivering.
type WebhookHandler struct {
	Secret  string
	Updates UpdateHandler
	Dedup   Deduper // optional
	Timeout time.Duration
}

func WebhookPath(secret string) string { return "/webhook/" + secret }

func (h *WebhookHandler) Register(r chi.Router) {
	r.Post("/webhook/{secret}", h.serve)
}

func (h *WebhookHandler) serve(w http.ResponseWriter, r *http.Request) {
	got := chi.URLParam(r, "secret")
	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
		http.NotFound(w, r)
		return
	}

	var u tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		logger.Warnw("undecodable update", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// the customer's step must finish even if Telegram drops the connection
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout())
	defer cancel()

	if h.Dedup != nil {
		first, err := h.Dedup.First(ctx, strconv.Itoa(u.UpdateID))
		if err != nil {
			logger.Warnw("update dedup unavailable", "update_id", u.UpdateID, "error", err)
		} else if !first {
			logger.Debugw("duplicate update dropped", "update_id", u.UpdateID)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	h.Updates.Handle(ctx, u)
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return 10 * time.Second
}
