package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcatalog "github.com/velux/backend/internal/application/catalog"
	"github.com/velux/backend/internal/domain/catalog"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/testutil"
	"gorm.io/gorm"
)

type fakeStorage struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
	uploadErr error
}

func (s *fakeStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if s.uploadErr != nil {
		return "", time.Time{}, s.uploadErr
	}
	return "https://storage.example.com/" + key + "?signed", time.Now().Add(expiresIn), nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return s.deleteErr
}

type cdnImages struct{}

func (cdnImages) ImageURL(_ context.Context, key string) string {
	return "https://cdn.example.com/" + key
}

func newProductService(t *testing.T) (*appcatalog.ProductService, *fakeStorage, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	storage := &fakeStorage{}
	svc := appcatalog.NewProductService(
		persistence.NewGormProductRepository(db),
		persistence.NewGormCategoryRepository(db),
		cdnImages{},
		storage,
	)
	return svc, storage, db
}

func boolPtr(b bool) *bool { return &b }

func TestProductService_List_VisibilityAndFilters(t *testing.T) {
	svc, _, db := newProductService(t)
	ctx := context.Background()
	skincare := testutil.SeedCategory(t, db, "Skincare")

	serum := testutil.SeedProduct(t, db, "Serum", "30")
	testutil.SeedProduct(t, db, "Soap", "5", testutil.OnSale("4"))
	testutil.SeedProduct(t, db, "Secret", "99", testutil.Unavailable())
	require.NoError(t, db.Exec("INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)", serum.ID, skincare.ID).Error)

	page, err := svc.List(ctx, appcatalog.ProductListFilter{}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total, "unavailable products are hidden from customers")

	page, err = svc.List(ctx, appcatalog.ProductListFilter{}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	page, err = svc.List(ctx, appcatalog.ProductListFilter{Available: boolPtr(false)}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Secret", page.Items[0].Name)

	page, err = svc.List(ctx, appcatalog.ProductListFilter{CategoryID: skincare.ID.String()}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, serum.ID, page.Items[0].ID)
	assert.Equal(t, []uuid.UUID{skincare.ID}, page.Items[0].CategoryIDs)

	page, err = svc.List(ctx, appcatalog.ProductListFilter{OnSale: boolPtr(true)}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(page.Items[0].EffectivePrice))

	page, err = svc.List(ctx, appcatalog.ProductListFilter{Search: "se"}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total, "prefix search matches Serum and Secret")

	page, err = svc.List(ctx, appcatalog.ProductListFilter{MinPrice: "10", MaxPrice: "50"}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Serum", page.Items[0].Name)

	page, err = svc.List(ctx, appcatalog.ProductListFilter{Ordering: "-price"}, true)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Secret", page.Items[0].Name)
	assert.Equal(t, "Soap", page.Items[2].Name)

	_, err = svc.List(ctx, appcatalog.ProductListFilter{MinPrice: "cheap"}, false)
	assert.ErrorIs(t, err, appcatalog.ErrInvalidFilter)
}

func TestProductService_List_Pagination(t *testing.T) {
	svc, _, db := newProductService(t)
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		testutil.SeedProduct(t, db, name, "1")
	}

	page, err := svc.List(context.Background(), appcatalog.ProductListFilter{Ordering: "name"}, false)
	require.NoError(t, err)
	assert.Len(t, page.Items, 4, "default page size")
	assert.Equal(t, 2, page.TotalPages)

	page, err = svc.List(context.Background(), appcatalog.ProductListFilter{Ordering: "name", Page: 2}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "E", page.Items[0].Name)
}

func TestProductService_CreateAndGet(t *testing.T) {
	svc, _, db := newProductService(t)
	ctx := context.Background()
	category := testutil.SeedCategory(t, db, "Hair")

	sale := decimal.NewFromInt(15)
	created, err := svc.Create(ctx, appcatalog.CreateProductRequest{
		Name:        "Shampoo",
		Description: "Gentle",
		Features:    []string{"vegan"},
		CategoryIDs: []uuid.UUID{category.ID},
		ImageKeys:   []string{"media/products/a.jpg"},
		Price:       decimal.NewFromInt(20),
		OnSale:      true,
		SalePrice:   &sale,
		InStock:     boolPtr(false),
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shampoo", got.Name)
	assert.Equal(t, []string{"vegan"}, got.Features)
	assert.True(t, got.Available)
	assert.False(t, got.InStock)
	assert.True(t, sale.Equal(got.EffectivePrice))
	require.Len(t, got.Images, 1)
	assert.Equal(t, "https://cdn.example.com/media/products/a.jpg", got.Images[0].URL)
	assert.Equal(t, []uuid.UUID{category.ID}, got.CategoryIDs)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.Create(ctx, appcatalog.CreateProductRequest{Name: "Bad", Price: decimal.NewFromInt(1), CategoryIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, appcatalog.ErrInvalidCategory)
}

func TestProductService_Update_CleansUpReplacedImages(t *testing.T) {
	svc, storage, db := newProductService(t)
	ctx := context.Background()
	product := testutil.SeedProduct(t, db, "Brush", "9", testutil.WithImage("media/old.jpg"))

	updated, err := svc.Update(ctx, product.ID, appcatalog.UpdateProductRequest{
		ImageKeys: []string{"media/new.jpg", "media/second.jpg"},
		Available: boolPtr(false),
	})
	require.NoError(t, err)

	assert.False(t, updated.Available)
	require.Len(t, updated.Images, 2)
	assert.Equal(t, []string{"media/old.jpg"}, storage.deleted)

	// reordering keeps both objects
	storage.deleted = nil
	_, err = svc.Update(ctx, product.ID, appcatalog.UpdateProductRequest{ImageKeys: []string{"media/second.jpg", "media/new.jpg"}})
	require.NoError(t, err)
	assert.Empty(t, storage.deleted)
}

func TestProductService_Delete_CleanupFailureIsNotSurfaced(t *testing.T) {
	svc, storage, db := newProductService(t)
	storage.deleteErr = errors.New("bucket unreachable")
	product := testutil.SeedProduct(t, db, "Comb", "3", testutil.WithImage("media/comb.jpg"))

	require.NoError(t, svc.Delete(context.Background(), product.ID))
	assert.Equal(t, []string{"media/comb.jpg"}, storage.deleted)

	err := svc.Delete(context.Background(), product.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestProductService_CreateUploadURL(t *testing.T) {
	svc, storage, db := newProductService(t)
	ctx := context.Background()
	product := testutil.SeedProduct(t, db, "Perfume", "60")

	resp, err := svc.CreateUploadURL(ctx, product.ID, appcatalog.UploadURLRequest{Slot: 2, FileName: "bottle.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Slot)
	assert.True(t, strings.HasPrefix(resp.Key, "media/products/"+product.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Contains(t, resp.UploadURL, resp.Key)

	_, err = svc.CreateUploadURL(ctx, product.ID, appcatalog.UploadURLRequest{Slot: 1, FileName: "x.exe", ContentType: "application/x-msdownload"})
	assert.ErrorIs(t, err, appcatalog.ErrInvalidContentType)

	_, err = svc.CreateUploadURL(ctx, uuid.New(), appcatalog.UploadURLRequest{Slot: 1, FileName: "a.jpg", ContentType: "image/jpeg"})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	storage.uploadErr = errors.New("presign failed")
	_, err = svc.CreateUploadURL(ctx, product.ID, appcatalog.UploadURLRequest{Slot: 1, FileName: "a.jpg", ContentType: "image/jpeg"})
	assert.ErrorIs(t, err, appcatalog.ErrUploadURLUnavailable)
}

func TestProductService_CreateUploadURL_WithoutStorage(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := appcatalog.NewProductService(persistence.NewGormProductRepository(db), persistence.NewGormCategoryRepository(db), nil, nil)

	_, err := svc.CreateUploadURL(context.Background(), uuid.New(), appcatalog.UploadURLRequest{Slot: 1, FileName: "a.jpg", ContentType: "image/jpeg"})
	assert.ErrorIs(t, err, appcatalog.ErrStorageUnavailable)
}

func TestCategoryService(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	storage := &fakeStorage{}
	svc := appcatalog.NewCategoryService(persistence.NewGormCategoryRepository(db), cdnImages{}, storage)
	ctx := context.Background()

	created, err := svc.Create(ctx, appcatalog.CreateCategoryRequest{Name: "Makeup", ImageKey: "media/makeup.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/makeup.jpg", created.ImageURL)

	_, err = svc.Create(ctx, appcatalog.CreateCategoryRequest{Name: "makeup"})
	assert.ErrorIs(t, err, catalog.ErrDuplicateName)

	other, err := svc.Create(ctx, appcatalog.CreateCategoryRequest{Name: "Body"})
	require.NoError(t, err)

	newName := "Makeup"
	_, err = svc.Update(ctx, other.ID, appcatalog.UpdateCategoryRequest{Name: &newName})
	assert.ErrorIs(t, err, catalog.ErrDuplicateName)

	newKey := "media/makeup-v2.jpg"
	updated, err := svc.Update(ctx, created.ID, appcatalog.UpdateCategoryRequest{ImageKey: &newKey})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/makeup-v2.jpg", updated.ImageURL)
	assert.Equal(t, []string{"media/makeup.jpg"}, storage.deleted)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Body", list[0].Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}
