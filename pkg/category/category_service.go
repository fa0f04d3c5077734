package category

import (
	"context"
	"errors"
	"strings"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	CategoryService interface {
		CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (domain.CategoryResponse, error)
		GetCategories(ctx context.Context, includeInactive bool) ([]domain.CategoryResponse, error)
		GetCategoryByID(ctx context.Context, id string) (domain.CategoryResponse, error)
		UpdateCategory(ctx context.Context, id string, req domain.UpdateCategoryRequest) (domain.CategoryResponse, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	categoryService struct {
		categoryRepository CategoryRepository
	}
)

func NewCategoryService(categoryRepository CategoryRepository) CategoryService {
	return &categoryService{
		categoryRepository: categoryRepository,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (domain.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CategoryResponse{}, domain.ErrBlankName
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return domain.CategoryResponse{}, err
	}

	category := &entities.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepository.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.CategoryResponse{}, domain.ErrCategoryNameTaken
		}
		return domain.CategoryResponse{}, err
	}
	return toCategoryResponse(category), nil
}

func (s *categoryService) GetCategories(ctx context.Context, includeInactive bool) ([]domain.CategoryResponse, error) {
	categories, err := s.categoryRepository.GetCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	result := make([]domain.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, toCategoryResponse(c))
	}
	return result, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id string) (domain.CategoryResponse, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return domain.CategoryResponse{}, err
	}
	return toCategoryResponse(category), nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id string, req domain.UpdateCategoryRequest) (domain.CategoryResponse, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return domain.CategoryResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.CategoryResponse{}, domain.ErrBlankName
		}
		if err := s.ensureNameFree(ctx, name, category.ID.String()); err != nil {
			return domain.CategoryResponse{}, err
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepository.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.CategoryResponse{}, domain.ErrCategoryNameTaken
		}
		return domain.CategoryResponse{}, err
	}
	return toCategoryResponse(category), nil
}

// DeleteCategory deactivates the category. Rows are kept so that products and
// past orders keep their references.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrParseUUID
	}
	if err := s.categoryRepository.SetCategoryActive(ctx, id, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *categoryService) getCategory(ctx context.Context, id string) (*entities.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	category, err := s.categoryRepository.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.categoryRepository.GetCategoryByName(ctx, name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID.String() == exceptID:
		return nil
	default:
		return domain.ErrCategoryNameTaken
	}
}

func toCategoryResponse(c *entities.Category) domain.CategoryResponse {
	return domain.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
