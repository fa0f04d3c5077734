package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"WA-Order-Bot/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	var got domain.SendTextRequest
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewWhatsAppClient(ClientConfig{
		APIURL:        srv.URL + "/v19.0/",
		AccessToken:   "token-123",
		PhoneNumberID: "1055",
	})

	require.NoError(t, client.SendText(context.Background(), "628123456789", "hello"))
	assert.Equal(t, "Bearer token-123", auth)
	assert.Equal(t, "/v19.0/1055/messages", path)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "628123456789", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestSendText_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()

	client := NewWhatsAppClient(ClientConfig{APIURL: srv.URL, AccessToken: "bad", PhoneNumberID: "1055"})

	err := client.SendText(context.Background(), "628123456789", "hello")
	assert.ErrorIs(t, err, domain.ErrSendMessage)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestSendText_NotConfigured(t *testing.T) {
	client := NewWhatsAppClient(ClientConfig{APIURL: "http://127.0.0.1:1"})
	assert.NoError(t, client.SendText(context.Background(), "628123456789", "hello"))
}
