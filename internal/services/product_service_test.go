package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widgetstore/internal/apperr"
	"widgetstore/internal/cache"
	"widgetstore/internal/models"
	"widgetstore/internal/repository/memory"
)

type fakeImageStore struct {
	mu      sync.Mutex
	saved   map[string]string
	deleted []string
	saveErr error
}

func (f *fakeImageStore) Save(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	url := "/public/uploads/" + filename
	f.saved[url] = string(data)
	return url, nil
}

func (f *fakeImageStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

func validProductInput() ProductInput {
	return ProductInput{
		Name:          "Widget",
		Description:   "A very useful widget",
		Price:         models.MoneyFromString("9.99"),
		StockQuantity: 5,
		Category:      "widgets",
		SKU:           "W-1",
	}
}

func newRedisCache(t *testing.T) *cache.RedisProductCache {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisProductCache(client, time.Minute)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(memory.NewProductStore(), nil, nil, clockAt(fixedNow))

	mutations := map[string]func(*ProductInput){
		"name":        func(in *ProductInput) { in.Name = " " },
		"description": func(in *ProductInput) { in.Description = "" },
		"price":       func(in *ProductInput) { in.Price = models.MoneyFromString("-0.01") },
		"stock":       func(in *ProductInput) { in.StockQuantity = -1 },
		"category":    func(in *ProductInput) { in.Category = "" },
		"sku":         func(in *ProductInput) { in.SKU = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validProductInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, apperr.ErrBadRequest)
		})
	}

	product, err := svc.Create(context.Background(), validProductInput())
	require.NoError(t, err)
	assert.True(t, product.IsAvailable)
	assert.Equal(t, models.DocumentTypeProduct, product.Type)
	assert.Equal(t, fixedNow, product.CreatedAt)
	assert.NotEmpty(t, product.ID)
}

func TestGetProductServedFromCache(t *testing.T) {
	store := memory.NewProductStore(widget("p", "9.99", 5))
	svc := NewProductService(store, newRedisCache(t), nil, nil)
	ctx := context.Background()

	first, err := svc.Get(ctx, "p")
	require.NoError(t, err)
	second, err := svc.Get(ctx, "p")
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, store.Gets(), "second read must come from the cache")
}

func TestStockChangeInvalidatesCache(t *testing.T) {
	store := memory.NewProductStore(widget("p", "9.99", 5))
	svc := NewProductService(store, newRedisCache(t), nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "p")
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, "p", -2)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)
}

func TestAdjustStockBelowZero(t *testing.T) {
	store := memory.NewProductStore(widget("p", "9.99", 2))
	svc := NewProductService(store, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, "p", -3)
	require.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.Equal(t, "Cannot reduce stock below zero", apperr.Message(err))

	p, err := store.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity)

	_, err = svc.AdjustStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteIsSoft(t *testing.T) {
	p := widget("p", "9.99", 2)
	p.ImageURL = "/public/uploads/old.png"
	store := memory.NewProductStore(p)
	images := &fakeImageStore{}
	svc := NewProductService(store, newRedisCache(t), images, clockAt(fixedNow))
	ctx := context.Background()

	_, err := svc.Get(ctx, "p")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "p"))

	_, err = svc.Get(ctx, "p")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := store.Get(ctx, "p")
	require.NoError(t, err, "soft-deleted products stay in the store")
	assert.False(t, stored.IsAvailable)
	require.NotNil(t, stored.ModifiedAt)
	assert.Equal(t, fixedNow, *stored.ModifiedAt)
	assert.Equal(t, []string{"/public/uploads/old.png"}, images.deleted)
}

func TestListProducts(t *testing.T) {
	a := widget("a", "1.00", 1)
	a.Category = "widgets"
	a.CreatedAt = fixedNow
	b := widget("b", "1.00", 1)
	b.Category = "gadgets"
	b.CreatedAt = fixedNow.Add(time.Hour)
	hidden := widget("c", "1.00", 1)
	hidden.IsAvailable = false
	svc := NewProductService(memory.NewProductStore(a, b, hidden), nil, nil, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "b", page.Items[0].ID)

	category := "widgets"
	page, err = svc.List(ctx, ProductFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].ID)

	blank := "  "
	_, err = svc.List(ctx, ProductFilter{Category: &blank})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	page, err = svc.List(ctx, ProductFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].ID)
	assert.Equal(t, int64(2), page.Page)
}

func TestUploadImage(t *testing.T) {
	p := widget("p", "9.99", 2)
	p.ImageURL = "/public/uploads/old.png"
	store := memory.NewProductStore(p)
	images := &fakeImageStore{}
	svc := NewProductService(store, nil, images, nil)
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, "p", "x.bmp", "image/bmp", 10, strings.NewReader("data"))
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.UploadImage(ctx, "p", "x.png", "image/png", MaxImageSize+1, strings.NewReader("data"))
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	updated, err := svc.UploadImage(ctx, "p", "new.png", "image/png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/public/uploads/new.png", updated.ImageURL)
	assert.Equal(t, []string{"/public/uploads/old.png"}, images.deleted)
	assert.Equal(t, "data", images.saved["/public/uploads/new.png"])

	images.saveErr = errors.New("disk full")
	_, err = svc.UploadImage(ctx, "p", "again.png", "image/png", 4, strings.NewReader("data"))
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestUpdateProduct(t *testing.T) {
	store := memory.NewProductStore(widget("p", "9.99", 2))
	svc := NewProductService(store, nil, nil, clockAt(fixedNow))
	ctx := context.Background()

	in := validProductInput()
	in.Price = models.MoneyFromString("12.50")
	updated, err := svc.Update(ctx, "p", in)
	require.NoError(t, err)
	assert.Equal(t, "12.5", updated.Price.String())
	require.NotNil(t, updated.ModifiedAt)

	_, err = svc.Update(ctx, "missing", in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// ctxAwareProducts fails reads whose context is already done, like a real
// driver would.
type ctxAwareProducts struct {
	*memory.ProductStore
}

func (c ctxAwareProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.ProductStore.Get(ctx, id)
}

func TestGetProductSharedLoadIgnoresCallerCancellation(t *testing.T) {
	seed := models.Product{ID: "p-1", Name: "Widget", Price: models.MoneyFromString("9.99"), StockQuantity: 5, IsAvailable: true}
	svc := NewProductService(ctxAwareProducts{memory.NewProductStore(seed)}, cache.Nop{}, nil, clockAt(fixedNow))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	product, err := svc.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", product.ID)
}
