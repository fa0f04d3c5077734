package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"WA-Order-Bot/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	mu       sync.Mutex
	messages []domain.IncomingMessage
	delay    time.Duration
	active   map[string]int
	overlap  bool
}

func (f *fakeChatService) HandleIncomingMessage(_ context.Context, msg domain.IncomingMessage) error {
	f.mu.Lock()
	if f.active == nil {
		f.active = make(map[string]int)
	}
	f.active[msg.From]++
	if f.active[msg.From] > 1 {
		f.overlap = true
	}
	f.messages = append(f.messages, msg)
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.active[msg.From]--
	f.mu.Unlock()
	return nil
}

func (f *fakeChatService) GetSessions(context.Context, int, int) ([]domain.ChatSessionResponse, int64, error) {
	return nil, 0, nil
}

func (f *fakeChatService) GetSessionByPhone(context.Context, string) (domain.ChatSessionResponse, error) {
	return domain.ChatSessionResponse{}, domain.ErrChatSessionNotFound
}

func (f *fakeChatService) ResetSession(context.Context, string) error {
	return nil
}

func (f *fakeChatService) received() []domain.IncomingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.IncomingMessage(nil), f.messages...)
}

func newWebhookApp(chatService *fakeChatService) (*fiber.App, WebhookHandler) {
	h := NewWebhookHandler(chatService, "verify-me", time.Second)
	app := fiber.New()
	app.Get("/whatsapp/webhook", h.VerifyWebhook)
	app.Post("/whatsapp/webhook", h.ReceiveWebhook)
	return app, h
}

const textPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550000000", "phone_number_id": "123"},
        "contacts": [{"wa_id": "628111", "profile": {"name": "Dewi"}}],
        "messages": [
          {"from": "628111", "id": "wamid.1", "timestamp": "1700000000", "type": "text", "text": {"body": "hi"}},
          {"from": "628111", "id": "wamid.2", "timestamp": "1700000001", "type": "interactive",
           "interactive": {"type": "button_reply", "button_reply": {"id": "yes", "title": "Yes"}}}
        ]
      }
    }]
  }]
}`

func TestReceiveWebhook_DispatchesMessages(t *testing.T) {
	chatService := &fakeChatService{}
	app, h := newWebhookApp(chatService)

	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(textPayload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, domain.MessageWebhookReceived, string(body))

	h.Wait()
	msgs := chatService.received()
	require.Len(t, msgs, 2)

	byID := map[string]domain.IncomingMessage{}
	for _, m := range msgs {
		byID[m.ID] = m
	}
	assert.Equal(t, "hi", byID["wamid.1"].Text)
	assert.Equal(t, "Dewi", byID["wamid.1"].ProfileName)
	assert.Equal(t, time.Unix(1700000000, 0), byID["wamid.1"].Timestamp)
	assert.Equal(t, "Yes", byID["wamid.2"].Text)
	assert.Equal(t, "interactive", byID["wamid.2"].Type)
}

const burstPayload = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [
          {"from": "628111", "id": "wamid.a1", "timestamp": "1700000000", "type": "text", "text": {"body": "hi"}},
          {"from": "628222", "id": "wamid.b1", "timestamp": "1700000000", "type": "text", "text": {"body": "hi"}},
          {"from": "628111", "id": "wamid.a2", "timestamp": "1700000001", "type": "text", "text": {"body": "1"}},
          {"from": "628111", "id": "wamid.a3", "timestamp": "1700000002", "type": "text", "text": {"body": "2 x1"}},
          {"from": "628222", "id": "wamid.b2", "timestamp": "1700000001", "type": "text", "text": {"body": "cart"}}
        ]
      }
    }]
  }]
}`

func TestReceiveWebhook_KeepsSenderOrder(t *testing.T) {
	chatService := &fakeChatService{delay: 20 * time.Millisecond}
	app, h := newWebhookApp(chatService)

	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(burstPayload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()

	h.Wait()
	perSender := map[string][]string{}
	for _, m := range chatService.received() {
		perSender[m.From] = append(perSender[m.From], m.ID)
	}
	assert.Equal(t, []string{"wamid.a1", "wamid.a2", "wamid.a3"}, perSender["628111"])
	assert.Equal(t, []string{"wamid.b1", "wamid.b2"}, perSender["628222"])
	assert.False(t, chatService.overlap, "messages from one sender were handled concurrently")
}

func TestGroupBySender(t *testing.T) {
	batches := groupBySender([]domain.IncomingMessage{
		{ID: "1", From: "a"}, {ID: "2", From: "b"}, {ID: "3", From: "a"},
	})
	require.Len(t, batches, 2)
	assert.Equal(t, []domain.IncomingMessage{{ID: "1", From: "a"}, {ID: "3", From: "a"}}, batches[0])
	assert.Equal(t, []domain.IncomingMessage{{ID: "2", From: "b"}}, batches[1])
}

func TestReceiveWebhook_AcknowledgesMalformedAndStatusOnly(t *testing.T) {
	chatService := &fakeChatService{}
	app, h := newWebhookApp(chatService)

	payloads := []string{
		`{"object": "whatsapp_business_account", "entry": [`,
		`not json at all`,
		`{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.9","status":"delivered","recipient_id":"628111"}]}}]}]}`,
	}
	for _, payload := range payloads {
		req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, payload)
	}

	h.Wait()
	assert.Empty(t, chatService.received())
}

func TestVerifyWebhook(t *testing.T) {
	app, _ := newWebhookApp(&fakeChatService{})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", query: "hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", wantStatus: fiber.StatusOK, wantBody: "12345"},
		{name: "wrong token", query: "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=12345", wantStatus: fiber.StatusForbidden},
		{name: "wrong mode", query: "hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=12345", wantStatus: fiber.StatusForbidden},
		{name: "missing params", query: "", wantStatus: fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whatsapp/webhook?"+tt.query, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, statusFromError(domain.ErrOrderNotFound))
	assert.Equal(t, fiber.StatusConflict, statusFromError(domain.ErrProductInUse))
	assert.Equal(t, fiber.StatusBadRequest, statusFromError(domain.ErrParseUUID))
	assert.Equal(t, fiber.StatusUnauthorized, statusFromError(domain.ErrInvalidCredentials))
	assert.Equal(t, fiber.StatusServiceUnavailable, statusFromError(domain.ErrNotConfigured))
	assert.Equal(t, fiber.StatusInternalServerError, statusFromError(io.ErrUnexpectedEOF))
	assert.Equal(t, fiber.StatusBadRequest, referenceStatus(domain.ErrProductNotFound, domain.ErrProductNotFound))
}
