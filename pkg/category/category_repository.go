package category

import (
	"context"

	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/database"

	"gorm.io/gorm"
)

type (
	CategoryRepository interface {
		CreateCategory(ctx context.Context, category *entities.Category) error
		GetCategoryByID(ctx context.Context, id string) (*entities.Category, error)
		GetCategoryByName(ctx context.Context, name string) (*entities.Category, error)
		GetCategories(ctx context.Context, includeInactive bool) ([]*entities.Category, error)
		UpdateCategory(ctx context.Context, category *entities.Category) error
		SetCategoryActive(ctx context.Context, id string, active bool) error
	}

	categoryRepository struct {
		db *gorm.DB
	}
)

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *entities.Category) error {
	return database.Conn(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id string) (*entities.Category, error) {
	var category entities.Category
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetCategoryByName(ctx context.Context, name string) (*entities.Category, error) {
	var category entities.Category
	if err := database.Conn(ctx, r.db).Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetCategories(ctx context.Context, includeInactive bool) ([]*entities.Category, error) {
	var categories []*entities.Category

	query := database.Conn(ctx, r.db)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *entities.Category) error {
	return database.Conn(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) SetCategoryActive(ctx context.Context, id string, active bool) error {
	res := database.Conn(ctx, r.db).Model(&entities.Category{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
