package domain

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessCreateProduct = "product created successfully"
	MessageSuccessUpdateProduct = "product updated successfully"
	MessageSuccessDeleteProduct = "product deleted successfully"
	MessageSuccessGetProducts   = "products retrieved successfully"
	MessageSuccessUploadImage   = "product image uploaded successfully"

	MessageFailedCreateProduct = "failed to create product"
	MessageFailedUpdateProduct = "failed to update product"
	MessageFailedDeleteProduct = "failed to delete product"
	MessageFailedGetProducts   = "failed to retrieve products"
	MessageFailedUploadImage   = "failed to upload product image"

	ErrProductNotFound    = errors.New("product not found")
	ErrProductInUse       = errors.New("product is referenced by orders or carts")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrInvalidImageFormat = errors.New("invalid image format")
)

type (
	CreateProductRequest struct {
		Name        string          `json:"name" validate:"required,notblank,max=150"`
		Description string          `json:"description" validate:"max=2000"`
		Price       decimal.Decimal `json:"price"`
		CategoryID  string          `json:"category_id" validate:"required,uuid"`
		Ingredients []string        `json:"ingredients" validate:"omitempty,dive,required,max=100"`
		IsAvailable *bool           `json:"is_available"`
	}

	UpdateProductRequest struct {
		Name        *string          `json:"name" validate:"omitempty,notblank,max=150"`
		Description *string          `json:"description" validate:"omitempty,max=2000"`
		Price       *decimal.Decimal `json:"price"`
		CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
		Ingredients []string         `json:"ingredients" validate:"omitempty,dive,required,max=100"`
		IsAvailable *bool            `json:"is_available"`
	}

	ProductFilter struct {
		CategoryID    string
		AvailableOnly bool
		Page          int
		Limit         int
	}

	UploadProductImageRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	ProductResponse struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Price        decimal.Decimal `json:"price"`
		CategoryID   string          `json:"category_id"`
		CategoryName string          `json:"category_name,omitempty"`
		Ingredients  []string        `json:"ingredients"`
		ImageURL     string          `json:"image_url,omitempty"`
		IsAvailable  bool            `json:"is_available"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
	}
)
