package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"
	"WA-Order-Bot/pkg/product"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	OrderService interface {
		CreateOrder(ctx context.Context, req domain.CreateOrderRequest, hooks ...OrderHook) (domain.OrderResponse, error)
		GetOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderResponse, int64, error)
		GetOrderByID(ctx context.Context, id string) (domain.OrderResponse, error)
		GetRecentOrdersByPhone(ctx context.Context, phone string, limit int) ([]domain.OrderResponse, error)
		UpdateOrderStatus(ctx context.Context, id string, req domain.UpdateOrderStatusRequest) (domain.OrderResponse, error)
	}

	// OrderHook runs inside the order placement transaction after the order
	// and its items are inserted. Returning an error rolls everything back.
	OrderHook func(ctx context.Context, order *entities.Order) error

	PaymentGateway interface {
		CreatePaymentLink(ctx context.Context, order domain.OrderResponse) (domain.PaymentLink, error)
	}

	OrderNotifier interface {
		NotifyNewOrder(order domain.OrderResponse) error
	}

	orderService struct {
		orderRepository   OrderRepository
		productRepository product.ProductRepository
		transactor        database.Transactor
		payment           PaymentGateway
		notifier          OrderNotifier
	}
)

// NewOrderService builds the service. payment and notifier are optional.
func NewOrderService(
	orderRepository OrderRepository,
	productRepository product.ProductRepository,
	transactor database.Transactor,
	payment PaymentGateway,
	notifier OrderNotifier,
) OrderService {
	return &orderService{
		orderRepository:   orderRepository,
		productRepository: productRepository,
		transactor:        transactor,
		payment:           payment,
		notifier:          notifier,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req domain.CreateOrderRequest, hooks ...OrderHook) (domain.OrderResponse, error) {
	lines, err := mergeLines(req.Items)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	order := &entities.Order{
		OrderNumber:   newOrderNumber(time.Now()),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Notes:         strings.TrimSpace(req.Notes),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}

	err = s.transactor.Transaction(ctx, func(ctx context.Context) error {
		items, err := s.priceLines(ctx, lines)
		if err != nil {
			return err
		}
		order.Items = items

		if err := s.orderRepository.CreateOrder(ctx, order); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.ErrProductNotFound
			}
			return err
		}

		for _, hook := range hooks {
			if err := hook(ctx, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.OrderResponse{}, err
	}

	res, err := s.GetOrderByID(ctx, order.ID.String())
	if err != nil {
		return domain.OrderResponse{}, err
	}

	log := logrus.WithFields(logrus.Fields{"order_id": res.ID, "order_number": res.OrderNumber})
	log.Info("order placed")

	if s.payment != nil {
		link, err := s.payment.CreatePaymentLink(ctx, res)
		if err != nil {
			log.WithError(err).Warn("failed to create payment link")
		} else if err := s.orderRepository.UpdatePayment(ctx, res.ID, domain.PaymentStatusPending, link.RedirectURL); err != nil {
			log.WithError(err).Warn("failed to store payment link")
		} else {
			res.PaymentStatus = domain.PaymentStatusPending
			res.PaymentURL = link.RedirectURL
		}
	}

	if s.notifier != nil {
		// a caller's enclosing transaction may still roll the order back
		database.AfterCommit(ctx, func() {
			go func(o domain.OrderResponse) {
				if err := s.notifier.NotifyNewOrder(o); err != nil {
					logrus.WithError(err).WithField("order_id", o.ID).Warn("failed to send order notification")
				}
			}(res)
		})
	}

	return res, nil
}

func (s *orderService) GetOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderResponse, int64, error) {
	if filter.Status != "" && filter.Status != "all" && !domain.IsValidOrderStatus(filter.Status) {
		return nil, 0, domain.ErrInvalidOrderStatus
	}

	orders, count, err := s.orderRepository.GetOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, ToOrderResponse(o))
	}
	return result, count, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (domain.OrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return domain.OrderResponse{}, err
	}
	return ToOrderResponse(order), nil
}

func (s *orderService) GetRecentOrdersByPhone(ctx context.Context, phone string, limit int) ([]domain.OrderResponse, error) {
	orders, err := s.orderRepository.GetRecentOrdersByPhone(ctx, phone, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, ToOrderResponse(o))
	}
	return result, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, req domain.UpdateOrderStatusRequest) (domain.OrderResponse, error) {
	if !domain.IsValidOrderStatus(req.Status) {
		return domain.OrderResponse{}, domain.ErrInvalidOrderStatus
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	if order.Status == req.Status {
		return ToOrderResponse(order), nil
	}
	if !domain.CanTransitionOrder(order.Status, req.Status) {
		return domain.OrderResponse{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, order.Status, req.Status)
	}

	if err := s.orderRepository.UpdateOrderStatus(ctx, id, req.Status); err != nil {
		return domain.OrderResponse{}, err
	}

	logrus.WithFields(logrus.Fields{"order_id": id, "from": order.Status, "to": req.Status}).Info("order status changed")
	return s.GetOrderByID(ctx, id)
}

func (s *orderService) getOrder(ctx context.Context, id string) (*entities.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	order, err := s.orderRepository.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// priceLines resolves every line against the catalog and snapshots the
// current unit price.
func (s *orderService) priceLines(ctx context.Context, lines []domain.OrderItemRequest) ([]entities.OrderItem, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.productRepository.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Product, len(products))
	for _, p := range products {
		byID[p.ID.String()] = p
	}

	items := make([]entities.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, l.ProductID)
		}
		if !p.IsAvailable || (p.Category != nil && !p.Category.IsActive) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, p.Name)
		}
		items = append(items, entities.OrderItem{
			ProductID: p.ID,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
		})
	}
	return items, nil
}

// mergeLines validates the requested lines and folds repeated products into
// one line, keeping first-seen order.
func mergeLines(in []domain.OrderItemRequest) ([]domain.OrderItemRequest, error) {
	if len(in) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	index := make(map[string]int, len(in))
	out := make([]domain.OrderItemRequest, 0, len(in))
	for _, l := range in {
		id, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		if l.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		key := id.String()
		if i, ok := index[key]; ok {
			out[i].Quantity += l.Quantity
		} else {
			index[key] = len(out)
			out = append(out, domain.OrderItemRequest{ProductID: key, Quantity: l.Quantity})
		}
	}

	for _, l := range out {
		if l.Quantity > domain.MaxItemQuantity {
			return nil, domain.ErrInvalidQuantity
		}
	}
	return out, nil
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

func ToOrderResponse(o *entities.Order) domain.OrderResponse {
	items := make([]domain.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		res := domain.OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			res.ProductName = item.Product.Name
		}
		items = append(items, res)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductName < items[j].ProductName })

	return domain.OrderResponse{
		ID:            o.ID.String(),
		OrderNumber:   o.OrderNumber,
		CustomerPhone: o.CustomerPhone,
		CustomerName:  o.CustomerName,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentURL:    o.PaymentURL,
		Notes:         o.Notes,
		Items:         items,
		Total:         o.Total(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
