package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/pkg/order"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	MidtransService interface {
		CreatePaymentLink(ctx context.Context, order domain.OrderResponse) (domain.PaymentLink, error)
		HandleNotification(ctx context.Context, req domain.MidtransNotification) error
	}

	snapClient interface {
		CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
	}

	midtransService struct {
		orderRepository order.OrderRepository
		snap            snapClient
		serverKey       string
	}
)

func NewMidtransService(orderRepository order.OrderRepository, serverKey string, isProd bool) MidtransService {
	env := midtrans.Sandbox
	if isProd {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)

	return &midtransService{
		orderRepository: orderRepository,
		snap:            &client,
		serverKey:       serverKey,
	}
}

func (s *midtransService) CreatePaymentLink(_ context.Context, o domain.OrderResponse) (domain.PaymentLink, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  o.OrderNumber,
			GrossAmt: o.Total.Round(0).IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: o.CustomerName,
			Phone: o.CustomerPhone,
		},
	}

	resp, mErr := s.snap.CreateTransaction(req)
	if mErr != nil {
		return domain.PaymentLink{}, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, mErr.Message)
	}
	return domain.PaymentLink{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (s *midtransService) HandleNotification(ctx context.Context, req domain.MidtransNotification) error {
	if !s.validSignature(req) {
		return domain.ErrInvalidSignature
	}

	o, err := s.orderRepository.GetOrderByNumber(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrOrderNotFound
		}
		return err
	}

	paymentStatus := PaymentStatusFromNotification(req.TransactionStatus, req.FraudStatus)
	if paymentStatus == "" {
		logrus.WithFields(logrus.Fields{"order_number": req.OrderID, "transaction_status": req.TransactionStatus}).
			Info("ignoring midtrans notification")
		return nil
	}

	// notifications can arrive late or out of order
	if !domain.CanTransitionPayment(o.PaymentStatus, paymentStatus) {
		logrus.WithFields(logrus.Fields{
			"order_number":       req.OrderID,
			"payment_status":     o.PaymentStatus,
			"transaction_status": req.TransactionStatus,
		}).Info("ignoring stale midtrans notification")
		return nil
	}

	if err := s.orderRepository.UpdatePayment(ctx, o.ID.String(), paymentStatus, ""); err != nil {
		return err
	}
	if paymentStatus == domain.PaymentStatusPaid && o.Status == domain.OrderStatusPending {
		if err := s.orderRepository.UpdateOrderStatus(ctx, o.ID.String(), domain.OrderStatusConfirmed); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"order_id":       o.ID.String(),
		"payment_status": paymentStatus,
		"payment_type":   req.PaymentType,
	}).Info("payment status updated")
	return nil
}

func (s *midtransService) validSignature(req domain.MidtransNotification) bool {
	expected := Signature(req.OrderID, req.StatusCode, req.GrossAmount, s.serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(req.SignatureKey)) == 1
}

// Signature computes the notification signature Midtrans attaches to every
// HTTP notification.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// PaymentStatusFromNotification maps a Midtrans transaction status to the
// order payment status. An empty result means the notification carries no
// change worth recording.
func PaymentStatusFromNotification(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return domain.PaymentStatusPending
		}
		return domain.PaymentStatusPaid
	case "settlement":
		return domain.PaymentStatusPaid
	case "pending":
		return domain.PaymentStatusPending
	case "deny", "cancel", "failure":
		return domain.PaymentStatusFailed
	case "expire":
		return domain.PaymentStatusExpired
	}
	return ""
}
