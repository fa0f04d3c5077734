package order

import (
	"context"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"

	"gorm.io/gorm"
)

type (
	OrderRepository interface {
		CreateOrder(ctx context.Context, order *entities.Order) error
		GetOrderByID(ctx context.Context, id string) (*entities.Order, error)
		GetOrderByNumber(ctx context.Context, orderNumber string) (*entities.Order, error)
		GetOrders(ctx context.Context, filter domain.OrderFilter) ([]*entities.Order, int64, error)
		GetRecentOrdersByPhone(ctx context.Context, phone string, limit int) ([]*entities.Order, error)
		UpdateOrderStatus(ctx context.Context, id string, status string) error
		UpdatePayment(ctx context.Context, id string, paymentStatus string, paymentURL string) error
	}

	orderRepository struct {
		db *gorm.DB
	}
)

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrder inserts the order together with its items.
func (r *orderRepository) CreateOrder(ctx context.Context, order *entities.Order) error {
	return database.Conn(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*entities.Order, error) {
	var order entities.Order
	if err := database.Conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*entities.Order, error) {
	var order entities.Order
	if err := database.Conn(ctx, r.db).
		Preload("Items.Product").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, filter domain.OrderFilter) ([]*entities.Order, int64, error) {
	var orders []*entities.Order
	var count int64

	offset := (filter.Page - 1) * filter.Limit

	query := database.Conn(ctx, r.db).Model(&entities.Order{})
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Phone != "" {
		query = query.Where("customer_phone = ?", filter.Phone)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Items.Product").
		Offset(offset).Limit(filter.Limit).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

func (r *orderRepository) GetRecentOrdersByPhone(ctx context.Context, phone string, limit int) ([]*entities.Order, error) {
	var orders []*entities.Order
	if err := database.Conn(ctx, r.db).
		Preload("Items").
		Where("customer_phone = ?", phone).
		Order("created_at desc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	return r.update(ctx, id, map[string]any{"status": status})
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id string, paymentStatus string, paymentURL string) error {
	updates := map[string]any{"payment_status": paymentStatus}
	if paymentURL != "" {
		updates["payment_url"] = paymentURL
	}
	return r.update(ctx, id, updates)
}

func (r *orderRepository) update(ctx context.Context, id string, updates map[string]any) error {
	res := database.Conn(ctx, r.db).Model(&entities.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
