package product

import (
	"context"
	"mime/multipart"
	"testing"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/internal/testutil"
	"WA-Order-Bot/pkg/category"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeS3 struct {
	uploaded []string
	deleted  []string
}

func (f *fakeS3) UploadFile(_ context.Context, name string, _ *multipart.FileHeader, folder string, _ ...string) (string, error) {
	key := folder + "/" + name + ".png"
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeS3) DeleteFile(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://bucket.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	return link[len("https://bucket.test/"):]
}

type fixture struct {
	db       *gorm.DB
	svc      ProductService
	s3       *fakeS3
	category string
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewTestDB(t)
	categoryRepo := category.NewCategoryRepository(db)
	cat := &entities.Category{Name: "Citrus", IsActive: true}
	require.NoError(t, categoryRepo.CreateCategory(context.Background(), cat))

	s3 := &fakeS3{}
	return fixture{
		db:       db,
		svc:      NewProductService(NewProductRepository(db), categoryRepo, s3),
		s3:       s3,
		category: cat.ID.String(),
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name:        "Orange Juice",
		Price:       decimal.RequireFromString("4.50"),
		CategoryID:  f.category,
		Ingredients: []string{"orange", " ", "ice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Citrus", created.CategoryName)
	assert.Equal(t, []string{"orange", "ice"}, created.Ingredients)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, created.IsAvailable)

	list, count, err := f.svc.GetProducts(ctx, domain.ProductFilter{CategoryID: f.category, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "Free", Price: decimal.Zero, CategoryID: f.category,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "Orphan", Price: decimal.NewFromInt(3), CategoryID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "  ", Price: decimal.NewFromInt(3), CategoryID: f.category,
	})
	assert.ErrorIs(t, err, domain.ErrBlankName)

	created, err := f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "Lemonade", Price: decimal.NewFromInt(3), CategoryID: f.category,
	})
	require.NoError(t, err)
	blank := " "
	_, err = f.svc.UpdateProduct(ctx, created.ID, domain.UpdateProductRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrBlankName)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "Lemonade", Price: decimal.NewFromInt(3), CategoryID: f.category,
	})
	require.NoError(t, err)

	price := decimal.RequireFromString("3.75")
	unavailable := false
	updated, err := f.svc.UpdateProduct(ctx, created.ID, domain.UpdateProductRequest{
		Price:       &price,
		IsAvailable: &unavailable,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.False(t, updated.IsAvailable)

	_, count, err := f.svc.GetProducts(ctx, domain.ProductFilter{AvailableOnly: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestDeleteProduct_InUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "Grapefruit", Price: decimal.NewFromInt(5), CategoryID: f.category,
	})
	require.NoError(t, err)

	order := &entities.Order{
		OrderNumber:   "ORD-TEST-1",
		CustomerPhone: "628111",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Items: []entities.OrderItem{{
			ProductID: uuid.MustParse(created.ID),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(5),
		}},
	}
	require.NoError(t, f.db.Create(order).Error)

	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, created.ID), domain.ErrProductInUse)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, domain.CreateProductRequest{
		Name: "Lime", Price: decimal.NewFromInt(2), CategoryID: f.category,
	})
	require.NoError(t, err)

	withImage, err := f.svc.UploadProductImage(ctx, created.ID, domain.UploadProductImageRequest{Image: &multipart.FileHeader{}})
	require.NoError(t, err)
	assert.Contains(t, withImage.ImageURL, "https://bucket.test/products/")

	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID))
	assert.Len(t, f.s3.deleted, 1)

	_, err = f.svc.GetProductByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
