package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ChatStateIdle               = "idle"
	ChatStateBrowsingCategories = "browsing_categories"
	ChatStateBrowsingProducts   = "browsing_products"
	ChatStateAwaitingQuantity   = "awaiting_quantity"
	ChatStateConfirmingOrder    = "confirming_order"
)

var (
	MessageSuccessGetChatSessions  = "chat sessions retrieved successfully"
	MessageSuccessResetChatSession = "chat session reset successfully"

	MessageFailedGetChatSessions  = "failed to retrieve chat sessions"
	MessageFailedResetChatSession = "failed to reset chat session"

	ErrChatSessionNotFound = errors.New("chat session not found")
)

type (
	// IncomingMessage is one inbound chat message taken from a webhook delivery.
	IncomingMessage struct {
		ID          string
		From        string
		ProfileName string
		Type        string
		Text        string
		Timestamp   time.Time
	}

	ChatCartItemResponse struct {
		ProductID   string          `json:"product_id"`
		ProductName string          `json:"product_name"`
		Quantity    int             `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		Subtotal    decimal.Decimal `json:"subtotal"`
	}

	ChatSessionResponse struct {
		ID           string                 `json:"id"`
		Phone        string                 `json:"phone"`
		CustomerName string                 `json:"customer_name,omitempty"`
		State        string                 `json:"state"`
		Items        []ChatCartItemResponse `json:"items"`
		CartTotal    decimal.Decimal        `json:"cart_total"`
		CreatedAt    time.Time              `json:"created_at"`
		UpdatedAt    time.Time              `json:"updated_at"`
	}
)
