package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"

	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
	PaymentStatusExpired = "expired"

	MaxItemQuantity = 99
)

var (
	MessageSuccessCreateOrder       = "order created successfully"
	MessageSuccessGetOrders         = "orders retrieved successfully"
	MessageSuccessUpdateOrderStatus = "order status updated successfully"

	MessageFailedCreateOrder       = "failed to create order"
	MessageFailedGetOrders         = "failed to retrieve orders"
	MessageFailedUpdateOrderStatus = "failed to update order status"

	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrInvalidQuantity         = errors.New("quantity must be between 1 and 99")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("order status transition not allowed")
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// paymentTransitions lists the payment statuses reachable from each status.
// A paid order never leaves paid. An expired payment only accepts a late
// settlement.
var paymentTransitions = map[string][]string{
	PaymentStatusUnpaid:  {PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired},
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired},
	PaymentStatusFailed:  {PaymentStatusPending, PaymentStatusPaid, PaymentStatusExpired},
	PaymentStatusExpired: {PaymentStatusPaid},
}

func CanTransitionPayment(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type (
	OrderItemRequest struct {
		ProductID string `json:"product_id" validate:"required,uuid"`
		Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
	}

	CreateOrderRequest struct {
		CustomerPhone string             `json:"customer_phone" validate:"required,phone"`
		CustomerName  string             `json:"customer_name" validate:"max=100"`
		Notes         string             `json:"notes" validate:"max=1000"`
		Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	}

	UpdateOrderStatusRequest struct {
		Status string `json:"status" validate:"required,oneof=pending confirmed processing completed cancelled"`
	}

	OrderFilter struct {
		Status string
		Phone  string
		Page   int
		Limit  int
	}

	OrderItemResponse struct {
		ID          string          `json:"id"`
		ProductID   string          `json:"product_id"`
		ProductName string          `json:"product_name,omitempty"`
		Quantity    int             `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		Subtotal    decimal.Decimal `json:"subtotal"`
	}

	OrderResponse struct {
		ID            string              `json:"id"`
		OrderNumber   string              `json:"order_number"`
		CustomerPhone string              `json:"customer_phone"`
		CustomerName  string              `json:"customer_name,omitempty"`
		Status        string              `json:"status"`
		PaymentStatus string              `json:"payment_status"`
		PaymentURL    string              `json:"payment_url,omitempty"`
		Notes         string              `json:"notes,omitempty"`
		Items         []OrderItemResponse `json:"items"`
		Total         decimal.Decimal     `json:"total"`
		CreatedAt     time.Time           `json:"created_at"`
		UpdatedAt     time.Time           `json:"updated_at"`
	}
)
