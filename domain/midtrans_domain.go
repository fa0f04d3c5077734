package domain

import "errors"

var (
	MessageSuccessMidtransNotification = "notification processed"
	MessageFailedMidtransNotification  = "failed to process notification"

	ErrPaymentFailed     = errors.New("failed to create payment")
	ErrInvalidSignature  = errors.New("invalid notification signature")
	ErrPaymentNotEnabled = errors.New("payment gateway not configured")
)

type (
	PaymentLink struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}

	MidtransNotification struct {
		TransactionStatus string `json:"transaction_status"`
		StatusCode        string `json:"status_code"`
		SignatureKey      string `json:"signature_key"`
		OrderID           string `json:"order_id"`
		GrossAmount       string `json:"gross_amount"`
		PaymentType       string `json:"payment_type"`
		FraudStatus       string `json:"fraud_status"`
		TransactionID     string `json:"transaction_id"`
	}
)
