package domain

import "errors"

var (
	MessageWebhookReceived = "EVENT_RECEIVED"

	ErrWebhookVerification = errors.New("webhook verification failed")
	ErrSendMessage         = errors.New("failed to send whatsapp message")
)

type (
	// WebhookPayload is the envelope posted by the WhatsApp Cloud API.
	WebhookPayload struct {
		Object string         `json:"object"`
		Entry  []WebhookEntry `json:"entry"`
	}

	WebhookEntry struct {
		ID      string          `json:"id"`
		Changes []WebhookChange `json:"changes"`
	}

	WebhookChange struct {
		Field string       `json:"field"`
		Value WebhookValue `json:"value"`
	}

	WebhookValue struct {
		MessagingProduct string           `json:"messaging_product"`
		Metadata         WebhookMetadata  `json:"metadata"`
		Contacts         []WebhookContact `json:"contacts"`
		Messages         []WebhookMessage `json:"messages"`
		Statuses         []WebhookStatus  `json:"statuses"`
	}

	WebhookMetadata struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	}

	WebhookContact struct {
		WaID    string `json:"wa_id"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	}

	WebhookMessage struct {
		From      string `json:"from"`
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
		Text      *struct {
			Body string `json:"body"`
		} `json:"text,omitempty"`
		Interactive *struct {
			Type        string `json:"type"`
			ButtonReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"button_reply,omitempty"`
			ListReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"list_reply,omitempty"`
		} `json:"interactive,omitempty"`
		Button *struct {
			Text    string `json:"text"`
			Payload string `json:"payload"`
		} `json:"button,omitempty"`
	}

	WebhookStatus struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		Timestamp   string `json:"timestamp"`
		RecipientID string `json:"recipient_id"`
	}

	// SendTextRequest is the Cloud API body for an outbound text message.
	SendTextRequest struct {
		MessagingProduct string   `json:"messaging_product"`
		RecipientType    string   `json:"recipient_type"`
		To               string   `json:"to"`
		Type             string   `json:"type"`
		Text             TextBody `json:"text"`
	}

	TextBody struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	}

	SendMessageResponse struct {
		MessagingProduct string `json:"messaging_product"`
		Messages         []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
)
