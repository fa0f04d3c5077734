package product

import (
	"context"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ProductRepository interface {
		CreateProduct(ctx context.Context, product *entities.Product) error
		GetProductByID(ctx context.Context, id string) (*entities.Product, error)
		GetProducts(ctx context.Context, filter domain.ProductFilter) ([]*entities.Product, int64, error)
		GetProductsByIDs(ctx context.Context, ids []string) ([]*entities.Product, error)
		GetAvailableProductsByCategory(ctx context.Context, categoryID string) ([]*entities.Product, error)
		UpdateProduct(ctx context.Context, product *entities.Product) error
		CountProductReferences(ctx context.Context, id string) (int64, error)
		DeleteProduct(ctx context.Context, id string) error
	}

	productRepository struct {
		db *gorm.DB
	}
)

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *entities.Product) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(product).Error
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*entities.Product, error) {
	var product entities.Product
	if err := database.Conn(ctx, r.db).Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]*entities.Product, int64, error) {
	var products []*entities.Product
	var count int64

	offset := (filter.Page - 1) * filter.Limit

	query := database.Conn(ctx, r.db).Model(&entities.Product{})
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Category").
		Offset(offset).Limit(filter.Limit).
		Order("name asc").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]*entities.Product, error) {
	var products []*entities.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := database.Conn(ctx, r.db).Preload("Category").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetAvailableProductsByCategory(ctx context.Context, categoryID string) ([]*entities.Product, error) {
	var products []*entities.Product
	if err := database.Conn(ctx, r.db).
		Where("category_id = ? AND is_available = ?", categoryID, true).
		Order("name asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *entities.Product) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(product).Error
}

func (r *productRepository) CountProductReferences(ctx context.Context, id string) (int64, error) {
	var orderItems, cartItems int64
	conn := database.Conn(ctx, r.db)
	if err := conn.Model(&entities.OrderItem{}).Where("product_id = ?", id).Count(&orderItems).Error; err != nil {
		return 0, err
	}
	if err := conn.Model(&entities.ChatSessionItem{}).Where("product_id = ?", id).Count(&cartItems).Error; err != nil {
		return 0, err
	}
	return orderItems + cartItems, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&entities.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
