package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/utils/storage"
	"WA-Order-Bot/pkg/category"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	ProductService interface {
		CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.ProductResponse, error)
		GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductResponse, int64, error)
		GetProductByID(ctx context.Context, id string) (domain.ProductResponse, error)
		UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) (domain.ProductResponse, error)
		DeleteProduct(ctx context.Context, id string) error
		UploadProductImage(ctx context.Context, id string, req domain.UploadProductImageRequest) (domain.ProductResponse, error)
	}

	productService struct {
		productRepository  ProductRepository
		categoryRepository category.CategoryRepository
		s3                 storage.AwsS3
	}
)

// NewProductService builds the service. s3 may be nil when image storage is
// not configured.
func NewProductService(productRepository ProductRepository, categoryRepository category.CategoryRepository, s3 storage.AwsS3) ProductService {
	return &productService{
		productRepository:  productRepository,
		categoryRepository: categoryRepository,
		s3:                 s3,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ProductResponse{}, domain.ErrBlankName
	}
	if !req.Price.IsPositive() {
		return domain.ProductResponse{}, domain.ErrInvalidPrice
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	product := &entities.Product{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price.Round(2),
		CategoryID:  categoryID,
		Ingredients: normalizeIngredients(req.Ingredients),
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.productRepository.CreateProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}
	return s.GetProductByID(ctx, product.ID.String())
}

func (s *productService) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductResponse, int64, error) {
	if filter.CategoryID != "" {
		if _, err := uuid.Parse(filter.CategoryID); err != nil {
			return nil, 0, domain.ErrParseUUID
		}
	}

	products, count, err := s.productRepository.GetProducts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, ToProductResponse(p))
	}
	return result, count, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (domain.ProductResponse, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return domain.ProductResponse{}, err
	}
	return ToProductResponse(product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) (domain.ProductResponse, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.ProductResponse{}, domain.ErrBlankName
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return domain.ProductResponse{}, domain.ErrInvalidPrice
		}
		product.Price = req.Price.Round(2)
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return domain.ProductResponse{}, err
		}
		product.CategoryID = categoryID
		product.Category = nil
	}
	if req.Ingredients != nil {
		product.Ingredients = normalizeIngredients(req.Ingredients)
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}
	return s.GetProductByID(ctx, id)
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return err
	}

	refs, err := s.productRepository.CountProductReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrProductInUse
	}

	if err := s.productRepository.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.ErrProductInUse
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotFound
		}
		return err
	}

	if product.ImageURL != "" && s.s3 != nil {
		if err := s.s3.DeleteFile(ctx, s.s3.GetObjectKeyFromLink(product.ImageURL)); err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("failed to delete product image")
		}
	}
	return nil
}

func (s *productService) UploadProductImage(ctx context.Context, id string, req domain.UploadProductImageRequest) (domain.ProductResponse, error) {
	if s.s3 == nil {
		return domain.ProductResponse{}, domain.ErrNotConfigured
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	objectKey, err := s.s3.UploadFile(
		ctx,
		fmt.Sprintf("product-%s-%s", product.ID.String(), uuid.NewString()[:8]),
		req.Image,
		"products",
		storage.AllowImage...,
	)
	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllowed) || errors.Is(err, storage.ErrFileTooLarge) {
			return domain.ProductResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidImageFormat, err)
		}
		return domain.ProductResponse{}, err
	}

	previous := product.ImageURL
	product.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	product.Category = nil
	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}

	if previous != "" {
		if err := s.s3.DeleteFile(ctx, s.s3.GetObjectKeyFromLink(previous)); err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("failed to delete previous product image")
		}
	}
	return s.GetProductByID(ctx, id)
}

func (s *productService) getProduct(ctx context.Context, id string) (*entities.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	product, err := s.productRepository.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) resolveCategory(ctx context.Context, id string) (uuid.UUID, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrParseUUID
	}
	if _, err := s.categoryRepository.GetCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domain.ErrCategoryNotFound
		}
		return uuid.Nil, err
	}
	return categoryID, nil
}

func normalizeIngredients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		if i = strings.TrimSpace(i); i != "" {
			out = append(out, i)
		}
	}
	return out
}

func ToProductResponse(p *entities.Product) domain.ProductResponse {
	res := domain.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID.String(),
		Ingredients: p.Ingredients,
		ImageURL:    p.ImageURL,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if res.Ingredients == nil {
		res.Ingredients = []string{}
	}
	if p.Category != nil {
		res.CategoryName = p.Category.Name
	}
	return res
}
