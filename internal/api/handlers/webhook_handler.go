package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/pkg/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	WebhookHandler interface {
		VerifyWebhook(c *fiber.Ctx) error
		ReceiveWebhook(c *fiber.Ctx) error
		// Wait blocks until every message accepted so far has been processed.
		Wait()
	}

	webhookHandler struct {
		chatService    chat.ChatService
		verifyToken    string
		processTimeout time.Duration
		inflight       sync.WaitGroup
	}
)

const defaultProcessTimeout = 30 * time.Second

func NewWebhookHandler(chatService chat.ChatService, verifyToken string, processTimeout time.Duration) WebhookHandler {
	if processTimeout <= 0 {
		processTimeout = defaultProcessTimeout
	}
	return &webhookHandler{
		chatService:    chatService,
		verifyToken:    verifyToken,
		processTimeout: processTimeout,
	}
}

func (h *webhookHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		logrus.WithField("mode", mode).Warn(domain.ErrWebhookVerification.Error())
		return c.SendStatus(fiber.StatusForbidden)
	}

	logrus.Info("whatsapp webhook verified")
	return c.Status(fiber.StatusOK).SendString(challenge)
}

// ReceiveWebhook acknowledges every delivery, malformed or not, and processes
// the contained messages in the background. Messages from one sender are
// handled in the order they appear in the delivery.
func (h *webhookHandler) ReceiveWebhook(c *fiber.Ctx) error {
	var payload domain.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		logrus.WithError(err).Warn("malformed whatsapp webhook payload")
		return c.Status(fiber.StatusOK).SendString(domain.MessageWebhookReceived)
	}

	for _, batch := range groupBySender(incomingMessages(payload)) {
		h.inflight.Add(1)
		go func(batch []domain.IncomingMessage) {
			defer h.inflight.Done()
			for _, msg := range batch {
				h.process(msg)
			}
		}(batch)
	}
	return c.Status(fiber.StatusOK).SendString(domain.MessageWebhookReceived)
}

func (h *webhookHandler) process(msg domain.IncomingMessage) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{"phone": msg.From, "message_id": msg.ID, "panic": r}).Error("panic while processing message")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
	defer cancel()

	if err := h.chatService.HandleIncomingMessage(ctx, msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"phone": msg.From, "message_id": msg.ID}).Error("failed to handle whatsapp message")
	}
}

func (h *webhookHandler) Wait() {
	h.inflight.Wait()
}

func incomingMessages(payload domain.WebhookPayload) []domain.IncomingMessage {
	var result []domain.IncomingMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			for _, status := range value.Statuses {
				logrus.WithFields(logrus.Fields{
					"message_id": status.ID,
					"status":     status.Status,
					"recipient":  status.RecipientID,
				}).Debug("whatsapp status update ignored")
			}

			names := make(map[string]string, len(value.Contacts))
			for _, contact := range value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for _, m := range value.Messages {
				if m.From == "" {
					continue
				}
				result = append(result, domain.IncomingMessage{
					ID:          m.ID,
					From:        m.From,
					ProfileName: names[m.From],
					Type:        m.Type,
					Text:        messageText(m),
					Timestamp:   parseUnix(m.Timestamp),
				})
			}
		}
	}
	return result
}

// groupBySender splits messages per sender, keeping their relative order.
func groupBySender(messages []domain.IncomingMessage) [][]domain.IncomingMessage {
	index := make(map[string]int)
	var batches [][]domain.IncomingMessage
	for _, msg := range messages {
		i, ok := index[msg.From]
		if !ok {
			i = len(batches)
			index[msg.From] = i
			batches = append(batches, nil)
		}
		batches[i] = append(batches[i], msg)
	}
	return batches
}

func messageText(m domain.WebhookMessage) string {
	switch {
	case m.Text != nil:
		return m.Text.Body
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.Title
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.Title
	case m.Button != nil:
		return m.Button.Text
	}
	return ""
}

func parseUnix(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(sec, 0)
}
