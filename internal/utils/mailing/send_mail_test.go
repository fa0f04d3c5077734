package mailing

import (
	"testing"

	"WA-Order-Bot/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func sampleOrder() domain.OrderResponse {
	return domain.OrderResponse{
		OrderNumber:   "ORD-20261017-ABC123",
		CustomerPhone: "628123456789",
		CustomerName:  "Dewi <script>",
		Items: []domain.OrderItemResponse{{
			ProductName: "Orange Juice",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("4.5"),
			Subtotal:    decimal.RequireFromString("9"),
		}},
		Total: decimal.RequireFromString("9"),
	}
}

func TestRenderOrderEmail(t *testing.T) {
	body, err := RenderOrderEmail(sampleOrder(), "IDR")
	require.NoError(t, err)

	assert.Contains(t, body, "ORD-20261017-ABC123")
	assert.Contains(t, body, "IDR 4.50")
	assert.Contains(t, body, "Total: IDR 9.00")
	assert.NotContains(t, body, "<script>")
}

func TestNotifyNewOrder(t *testing.T) {
	var sent []*gomail.Message
	m := &Mailer{
		config: MailConfig{SMTPEmail: "bot@shop.test", SMTPSender: "Order Bot", NotifyEmail: "owner@shop.test", Currency: "IDR"},
		send: func(msg *gomail.Message) error {
			sent = append(sent, msg)
			return nil
		},
	}

	require.NoError(t, m.NotifyNewOrder(sampleOrder()))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"owner@shop.test"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"New order ORD-20261017-ABC123 from 628123456789"}, sent[0].GetHeader("Subject"))
}

func TestNewMailer_InvalidPort(t *testing.T) {
	_, err := NewMailer(MailConfig{SMTPHost: "smtp.test", SMTPPort: "abc"})
	assert.Error(t, err)
}
