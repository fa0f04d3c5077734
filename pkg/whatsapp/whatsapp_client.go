package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"WA-Order-Bot/domain"

	"github.com/sirupsen/logrus"
)

// maxTextLength is the Cloud API limit for a text message body.
const maxTextLength = 4096

type (
	WhatsAppClient interface {
		SendText(ctx context.Context, to string, body string) error
	}

	ClientConfig struct {
		APIURL        string
		AccessToken   string
		PhoneNumberID string
		HTTPClient    *http.Client
	}

	whatsappClient struct {
		config ClientConfig
		http   *http.Client
	}
)

func NewWhatsAppClient(config ClientConfig) WhatsAppClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &whatsappClient{config: config, http: httpClient}
}

func (c *whatsappClient) SendText(ctx context.Context, to string, body string) error {
	log := logrus.WithField("phone", to)
	if c.config.AccessToken == "" || c.config.PhoneNumberID == "" {
		log.WithField("body", body).Info("whatsapp not configured, reply not sent")
		return nil
	}

	if utf8.RuneCountInString(body) > maxTextLength {
		body = string([]rune(body)[:maxTextLength])
	}

	payload, err := json.Marshal(domain.SendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             domain.TextBody{Body: body},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.config.APIURL, "/"), c.config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSendMessage, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrSendMessage, resp.StatusCode, string(respBody))
	}

	var sent domain.SendMessageResponse
	if err := json.Unmarshal(respBody, &sent); err == nil && len(sent.Messages) > 0 {
		log = log.WithField("wamid", sent.Messages[0].ID)
	}
	log.Debug("whatsapp message sent")
	return nil
}
