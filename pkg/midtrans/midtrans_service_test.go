package midtrans

import (
	"context"
	"testing"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/testutil"
	"WA-Order-Bot/pkg/order"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverKey = "SB-Mid-server-test"

type fakeSnap struct {
	req *snap.Request
	err *midtrans.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}

func seedOrder(t *testing.T) (order.OrderRepository, *entities.Order) {
	db := testutil.NewTestDB(t)
	cat := &entities.Category{Name: "Citrus", IsActive: true}
	require.NoError(t, db.Create(cat).Error)
	p := &entities.Product{Name: "Orange", Price: decimal.NewFromInt(15000), CategoryID: cat.ID, IsAvailable: true}
	require.NoError(t, db.Create(p).Error)

	o := &entities.Order{
		OrderNumber:   "ORD-20261017-AAAAAA",
		CustomerPhone: "628123456789",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Items:         []entities.OrderItem{{ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}},
	}
	repo := order.NewOrderRepository(db)
	require.NoError(t, repo.CreateOrder(context.Background(), o))
	return repo, o
}

func notification(status, fraud string) domain.MidtransNotification {
	n := domain.MidtransNotification{
		TransactionStatus: status,
		FraudStatus:       fraud,
		StatusCode:        "200",
		OrderID:           "ORD-20261017-AAAAAA",
		GrossAmount:       "30000.00",
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func TestCreatePaymentLink(t *testing.T) {
	fake := &fakeSnap{}
	svc := &midtransService{snap: fake, serverKey: serverKey}

	link, err := svc.CreatePaymentLink(context.Background(), domain.OrderResponse{
		OrderNumber:   "ORD-1",
		CustomerPhone: "628123456789",
		Total:         decimal.RequireFromString("30000.40"),
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-token", link.Token)
	assert.Equal(t, "ORD-1", fake.req.TransactionDetails.OrderID)
	assert.EqualValues(t, 30000, fake.req.TransactionDetails.GrossAmt)

	fake.err = &midtrans.Error{Message: "unauthorized"}
	_, err = svc.CreatePaymentLink(context.Background(), domain.OrderResponse{OrderNumber: "ORD-2"})
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)
}

func TestHandleNotification_Settlement(t *testing.T) {
	repo, o := seedOrder(t)
	svc := &midtransService{orderRepository: repo, serverKey: serverKey}

	require.NoError(t, svc.HandleNotification(context.Background(), notification("settlement", "")))

	stored, err := repo.GetOrderByID(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)
}

func TestHandleNotification_OutOfOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("paid is final", func(t *testing.T) {
		repo, o := seedOrder(t)
		svc := &midtransService{orderRepository: repo, serverKey: serverKey}

		for _, status := range []string{"settlement", "pending", "expire", "deny"} {
			require.NoError(t, svc.HandleNotification(ctx, notification(status, "")))
		}

		stored, err := repo.GetOrderByID(ctx, o.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
		assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)
	})

	t.Run("expired ignores pending", func(t *testing.T) {
		repo, o := seedOrder(t)
		svc := &midtransService{orderRepository: repo, serverKey: serverKey}

		require.NoError(t, svc.HandleNotification(ctx, notification("expire", "")))
		require.NoError(t, svc.HandleNotification(ctx, notification("pending", "")))

		stored, err := repo.GetOrderByID(ctx, o.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusExpired, stored.PaymentStatus)
		assert.Equal(t, domain.OrderStatusPending, stored.Status)

		require.NoError(t, svc.HandleNotification(ctx, notification("settlement", "")))
		stored, err = repo.GetOrderByID(ctx, o.ID.String())
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	})
}

func TestCanTransitionPayment(t *testing.T) {
	assert.True(t, domain.CanTransitionPayment(domain.PaymentStatusUnpaid, domain.PaymentStatusPending))
	assert.True(t, domain.CanTransitionPayment(domain.PaymentStatusFailed, domain.PaymentStatusPaid))
	assert.False(t, domain.CanTransitionPayment(domain.PaymentStatusPaid, domain.PaymentStatusExpired))
	assert.False(t, domain.CanTransitionPayment(domain.PaymentStatusPending, domain.PaymentStatusPending))
	assert.False(t, domain.CanTransitionPayment(domain.PaymentStatusExpired, domain.PaymentStatusFailed))
}

func TestHandleNotification_Rejections(t *testing.T) {
	repo, _ := seedOrder(t)
	svc := &midtransService{orderRepository: repo, serverKey: serverKey}

	forged := notification("settlement", "")
	forged.GrossAmount = "1.00"
	assert.ErrorIs(t, svc.HandleNotification(context.Background(), forged), domain.ErrInvalidSignature)

	unknown := notification("settlement", "")
	unknown.OrderID = "ORD-MISSING"
	unknown.SignatureKey = Signature(unknown.OrderID, unknown.StatusCode, unknown.GrossAmount, serverKey)
	assert.ErrorIs(t, svc.HandleNotification(context.Background(), unknown), domain.ErrOrderNotFound)
}

func TestPaymentStatusFromNotification(t *testing.T) {
	tests := []struct {
		status, fraud, want string
	}{
		{"capture", "accept", domain.PaymentStatusPaid},
		{"capture", "challenge", domain.PaymentStatusPending},
		{"settlement", "", domain.PaymentStatusPaid},
		{"pending", "", domain.PaymentStatusPending},
		{"deny", "", domain.PaymentStatusFailed},
		{"expire", "", domain.PaymentStatusExpired},
		{"refund", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.fraud, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatusFromNotification(tt.status, tt.fraud))
		})
	}
}
