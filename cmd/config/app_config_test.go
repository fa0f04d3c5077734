package config

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/internal/testutil"
	"WA-Order-Bot/internal/utils"
	"WA-Order-Bot/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	cfg := &utils.Config{
		AppEnv:                       utils.EnvDevelopment,
		Port:                         "3000",
		FrontendURL:                  "*",
		LogLevel:                     "error",
		RateLimitMax:                 1000,
		RateLimitWindowSeconds:       1,
		Currency:                     "IDR",
		JWTSecret:                    "app-test-secret-0123456789abcdefghij",
		JWTExpiryMinutes:             60,
		AdminName:                    "Owner",
		AdminEmail:                   "owner@shop.test",
		AdminPassword:                "s3cretpass",
		WhatsAppVerifyToken:          "verify-me",
		WebhookProcessTimeoutSeconds: 5,
	}

	app, err := NewApp(testutil.NewTestDB(t), cfg, io.Discard)
	require.NoError(t, err)
	return &testServer{t: t, app: app}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (s *testServer) login() string {
	status, env := s.do(http.MethodPost, "/api/auth/login", "", domain.LoginRequest{
		Email:    "owner@shop.test",
		Password: "s3cretpass",
	})
	require.Equal(s.t, http.StatusOK, status, env.Error)

	var res domain.LoginResponse
	require.NoError(s.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Status)

	status, _ = s.do(http.MethodPost, "/api/products/categories", "", map[string]any{"name": "Citrus"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodGet, "/api/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := s.login()
	status, env = s.do(http.MethodGet, "/api/orders", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Status)

	status, env = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me domain.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "owner@shop.test", me.Email)
}

func TestProtectedEndpointsRequireAdminRole(t *testing.T) {
	s := newTestServer(t)

	staff, err := jwt.NewJWTService("app-test-secret-0123456789abcdefghij", time.Hour).GenerateTokenUser("staff-1", "staff")
	require.NoError(t, err)

	requests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/orders", nil},
		{http.MethodPost, "/api/orders", map[string]any{"customer_phone": "628123456789"}},
		{http.MethodGet, "/api/chat-sessions", nil},
		{http.MethodDelete, "/api/chat-sessions/628123456789", nil},
		{http.MethodPost, "/api/products/categories", map[string]any{"name": "Citrus"}},
		{http.MethodPost, "/api/products", map[string]any{"name": "Lemonade"}},
		{http.MethodDelete, "/api/products/00000000-0000-0000-0000-000000000000", nil},
	}
	for _, r := range requests {
		status, env := s.do(r.method, r.path, staff, r.body)
		assert.Equal(t, http.StatusForbidden, status, "%s %s", r.method, r.path)
		assert.False(t, env.Status)
	}

	status, _ := s.do(http.MethodGet, "/api/orders", s.login(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/products/categories", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCreateCategoryThenList(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	status, env := s.do(http.MethodPost, "/api/products/categories", token, map[string]any{
		"name":        "Citrus",
		"description": "Citrus juices",
		"is_active":   true,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	var created domain.CategoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)

	status, env = s.do(http.MethodGet, "/api/products/categories", "", nil)
	require.Equal(t, http.StatusOK, status)

	var list []domain.CategoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Citrus", list[0].Name)
	assert.Equal(t, "Citrus juices", list[0].Description)
	assert.True(t, list[0].IsActive)
	assert.True(t, created.CreatedAt.Equal(list[0].CreatedAt), "created_at %s != %s", created.CreatedAt, list[0].CreatedAt)
	assert.True(t, created.UpdatedAt.Equal(list[0].UpdatedAt), "updated_at %s != %s", created.UpdatedAt, list[0].UpdatedAt)
	assert.Zero(t, created.CreatedAt.Nanosecond()%int(time.Microsecond))

	status, _ = s.do(http.MethodPost, "/api/products/categories", token, map[string]any{"name": "citrus"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	_, env := s.do(http.MethodPost, "/api/products/categories", token, map[string]any{"name": "Citrus"})
	var cat domain.CategoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	status, env := s.do(http.MethodPost, "/api/products", token, map[string]any{
		"name":        "Orange Juice",
		"price":       "4.50",
		"category_id": cat.ID,
		"ingredients": []string{"orange", "ice"},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var prod domain.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &prod))

	status, env = s.do(http.MethodPost, "/api/orders", token, map[string]any{
		"customer_phone": "628111222333",
		"items":          []map[string]any{{"product_id": prod.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var created domain.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, created.Total.Equal(decimal.NewFromInt(9)), created.Total.String())
	assert.Equal(t, domain.OrderStatusPending, created.Status)

	status, _ = s.do(http.MethodPatch, "/api/orders/"+created.ID+"/status", token, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = s.do(http.MethodPatch, "/api/orders/"+created.ID+"/status", token, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, _ = s.do(http.MethodDelete, "/api/products/"+prod.ID, token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(http.MethodPost, "/api/orders", token, map[string]any{
		"customer_phone": "628111222333",
		"items":          []map[string]any{{"product_id": "6f1c1c1e-0000-4000-8000-000000000000", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(http.MethodGet, "/api/orders/6f1c1c1e-0000-4000-8000-000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWhatsAppWebhookRoutes(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet,
		"/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=abc", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", string(body))

	payload := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{` +
		`"contacts":[{"wa_id":"628999","profile":{"name":"Budi"}}],` +
		`"messages":[{"from":"628999","id":"wamid.A","timestamp":"1700000000","type":"text","text":{"body":"hi"}}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.app.webhookHandler.Wait()

	token := s.login()
	status, env := s.do(http.MethodGet, "/api/chat-sessions/628999", token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var session domain.ChatSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "Budi", session.CustomerName)
	assert.Equal(t, domain.ChatStateIdle, session.State)

	status, _ = s.do(http.MethodDelete, "/api/chat-sessions/628999", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodGet, "/api/chat-sessions/628999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMidtransWebhookDisabled(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodPost, "/webhook/midtrans", "", map[string]any{"order_id": "ORD-1"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, env.Status)
}
