package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pizza-bot/internal/redisx"
)

type recordingHandler struct {
	mu  sync.Mutex
	ids []int
	ctx []context.Context
}

func (h *recordingHandler) Handle(ctx context.Context, u tgbotapi.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, u.UpdateID)
	h.ctx = append(h.ctx, ctx)
}

func newServer(t *testing.T, h *WebhookHandler) *httptest.Server {
	t.Helper()
	r := NewRouter(zap.NewNop())
	h.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestWebhook_DeliversUpdates(t *testing.T) {
	rec := &recordingHandler{}
	srv := newServer(t, &WebhookHandler{Secret: "s3cret", Updates: rec})

	code := post(t, srv.URL+WebhookPath("s3cret"), `{"update_id": 7, "message": {"message_id": 1, "text": "hi"}}`)
	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, []int{7}, rec.ids)
	_, hasDeadline := rec.ctx[0].Deadline()
	assert.True(t, hasDeadline)
}

func TestWebhook_WrongSecret(t *testing.T) {
	rec := &recordingHandler{}
	srv := newServer(t, &WebhookHandler{Secret: "s3cret", Updates: rec})

	assert.Equal(t, http.StatusNotFound, post(t, srv.URL+WebhookPath("guess"), `{"update_id": 1}`))
	assert.Empty(t, rec.ids)
}

func TestWebhook_BadJSONIsAcknowledged(t *testing.T) {
	rec := &recordingHandler{}
	srv := newServer(t, &WebhookHandler{Secret: "s3cret", Updates: rec})

	assert.Equal(t, http.StatusOK, post(t, srv.URL+WebhookPath("s3cret"), `{"update_id": `))
	assert.Empty(t, rec.ids)
}

func TestWebhook_DropsRedeliveredUpdates(t *testing.T) {
	mr := miniredis.RunT(t)
	rec := &recordingHandler{}
	dedup := redisx.NewDedup(redisx.New(mr.Addr()), "pizzabot")
	srv := newServer(t, &WebhookHandler{Secret: "s3cret", Updates: rec, Dedup: dedup})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(t, srv.URL+WebhookPath("s3cret"), `{"update_id": 11}`))
	}
	post(t, srv.URL+WebhookPath("s3cret"), `{"update_id": 12}`)
	assert.Equal(t, []int{11, 12}, rec.ids)
}

func TestWebhook_RedisDownStillProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	rec := &recordingHandler{}
	dedup := redisx.NewDedup(redisx.New(mr.Addr()), "pizzabot")
	srv := newServer(t, &WebhookHandler{Secret: "s3cret", Updates: rec, Dedup: dedup})
	mr.Close()

	assert.Equal(t, http.StatusOK, post(t, srv.URL+WebhookPath("s3cret"), `{"update_id": 5}`))
	assert.Equal(t, []int{5}, rec.ids)
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, &WebhookHandler{Secret: "s3cret", Updates: &recordingHandler{}})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
