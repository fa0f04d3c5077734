package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessCreateCategory = "category created successfully"
	MessageSuccessUpdateCategory = "category updated successfully"
	MessageSuccessDeleteCategory = "category deactivated successfully"
	MessageSuccessGetCategories  = "categories retrieved successfully"

	MessageFailedCreateCategory = "failed to create category"
	MessageFailedUpdateCategory = "failed to update category"
	MessageFailedDeleteCategory = "failed to deactivate category"
	MessageFailedGetCategories  = "failed to retrieve categories"

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrCategoryInactive  = errors.New("category is inactive")
)

type (
	CreateCategoryRequest struct {
		Name        string `json:"name" validate:"required,notblank,max=100"`
		Description string `json:"description" validate:"max=1000"`
		IsActive    *bool  `json:"is_active"`
	}

	UpdateCategoryRequest struct {
		Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
		Description *string `json:"description" validate:"omitempty,max=1000"`
		IsActive    *bool   `json:"is_active"`
	}

	CategoryResponse struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		IsActive    bool      `json:"is_active"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}
)
