package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"widgetstore/internal/apperr"
	"widgetstore/internal/cache"
	"widgetstore/internal/models"
	"widgetstore/internal/repository"
)

const MaxImageSize = 50 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ImageStore keeps product images and hands back their public URLs.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

type ProductInput struct {
	Name          string
	Description   string
	Price         models.Money
	StockQuantity int
	Category      string
	SKU           string
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.BadRequest("Product name is required")
	case strings.TrimSpace(in.Description) == "":
		return apperr.BadRequest("Product description is required")
	case in.Price.IsNegative():
		return apperr.BadRequest("Price cannot be negative")
	case in.StockQuantity < 0:
		return apperr.BadRequest("Stock quantity cannot be negative")
	case strings.TrimSpace(in.Category) == "":
		return apperr.BadRequest("Category is required")
	case strings.TrimSpace(in.SKU) == "":
		return apperr.BadRequest("SKU is required")
	}
	return nil
}

// ProductFilter drives catalog listings. A non-nil Category that is blank is
// rejected. Limit 0 returns everything.
type ProductFilter struct {
	Category *string
	Search   string
	Page     int64
	Limit    int64
}

type ProductPage struct {
	Items []models.Product `json:"data"`
	Page  int64            `json:"page"`
	Limit int64            `json:"limit"`
	Total int64            `json:"total"`
}

type ProductService struct {
	products repository.ProductRepository
	cache    cache.ProductCache
	images   ImageStore
	sfg      singleflight.Group
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository, productCache cache.ProductCache, images ImageStore, now func() time.Time) *ProductService {
	if productCache == nil {
		productCache = cache.Nop{}
	}
	if now == nil {
		now = utcNow
	}
	return &ProductService{
		products: products,
		cache:    productCache,
		images:   images,
		now:      now,
	}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            newID(),
		Type:          models.DocumentTypeProduct,
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		Category:      strings.TrimSpace(in.Category),
		SKU:           strings.TrimSpace(in.SKU),
		IsAvailable:   true,
		CreatedAt:     s.now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("product %s already exists", product.ID)
		}
		return nil, apperr.Unavailable(err, "product could not be saved")
	}

	log.Printf("[PRODUCT] [INFO] product %s created (%s)", product.ID, product.SKU)
	return product, nil
}

// Get serves available products through the cache. Concurrent misses for
// the same id share one store read, which is detached from the first
// caller's cancellation so it cannot fail the others.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)

		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[CACHE] [WARN] product %s cache get failed: %v", id, err)
		}

		product, err = s.products.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if product.IsAvailable {
			if err := s.cache.Set(ctx, product); err != nil {
				log.Printf("[CACHE] [WARN] product %s cache set failed: %v", id, err)
			}
		}
		return product, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Product with ID %s not found", id)
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "catalog unavailable")
	}

	product := *v.(*models.Product)
	if !product.IsAvailable {
		return nil, apperr.NotFound("Product with ID %s not found", id)
	}
	return &product, nil
}

func (s *ProductService) List(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	query := repository.ProductQuery{
		Search:        strings.TrimSpace(filter.Search),
		AvailableOnly: true,
	}
	if filter.Category != nil {
		category := strings.TrimSpace(*filter.Category)
		if category == "" {
			return nil, apperr.BadRequest("Category cannot be empty")
		}
		query.Category = category
	}
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		query.Skip = (page - 1) * filter.Limit
		query.Limit = filter.Limit
		filter.Page = page
	}

	items, total, err := s.products.List(ctx, query)
	if err != nil {
		return nil, apperr.Unavailable(err, "catalog unavailable")
	}
	return &ProductPage{Items: items, Page: filter.Page, Limit: filter.Limit, Total: total}, nil
}

// lookup reads a product regardless of availability.
func (s *ProductService) lookup(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Product with ID %s not found", id)
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "catalog unavailable")
	}
	return product, nil
}

func (s *ProductService) save(ctx context.Context, product *models.Product) error {
	product.Touch(s.now())
	if err := s.products.Upsert(ctx, product); err != nil {
		return apperr.Unavailable(err, "product could not be saved")
	}
	if err := s.cache.Delete(ctx, product.ID); err != nil {
		log.Printf("[CACHE] [WARN] product %s cache invalidation failed: %v", product.ID, err)
	}
	return nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = strings.TrimSpace(in.Description)
	product.Price = in.Price
	product.StockQuantity = in.StockQuantity
	product.Category = strings.TrimSpace(in.Category)
	product.SKU = strings.TrimSpace(in.SKU)

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	log.Printf("[PRODUCT] [INFO] product %s updated", product.ID)
	return product, nil
}

// AdjustStock adds delta (which may be negative) to the stock level.
func (s *ProductService) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	product, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	next := product.StockQuantity + delta
	if next < 0 {
		return nil, apperr.BadRequest("Cannot reduce stock below zero")
	}
	product.StockQuantity = next

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	log.Printf("[PRODUCT] [INFO] product %s stock adjusted by %d to %d", product.ID, delta, next)
	return product, nil
}

// Delete is a soft delete: the product stays stored but is no longer
// available. Its image is removed.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if product.ImageURL != "" && s.images != nil {
		if err := s.images.Delete(ctx, product.ImageURL); err != nil {
			log.Printf("[PRODUCT] [WARN] image delete failed for %s: %v", product.ID, err)
		}
		product.ImageURL = ""
	}
	product.IsAvailable = false

	if err := s.save(ctx, product); err != nil {
		return err
	}
	log.Printf("[PRODUCT] [INFO] product %s deleted", product.ID)
	return nil
}

func (s *ProductService) UploadImage(ctx context.Context, id, filename, contentType string, size int64, r io.Reader) (*models.Product, error) {
	if s.images == nil {
		return nil, apperr.Unavailable(nil, "image storage is not configured")
	}
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return nil, apperr.BadRequest("Invalid file type. Only JPEG, PNG and GIF are allowed")
	}
	if size <= 0 {
		return nil, apperr.BadRequest("No file uploaded")
	}
	if size > MaxImageSize {
		return nil, apperr.BadRequest("File size exceeds 50MB limit")
	}

	product, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.ImageURL != "" {
		if err := s.images.Delete(ctx, product.ImageURL); err != nil {
			log.Printf("[PRODUCT] [WARN] old image delete failed for %s: %v", product.ID, err)
		}
	}

	url, err := s.images.Save(ctx, filename, contentType, io.LimitReader(r, MaxImageSize))
	if err != nil {
		return nil, apperr.Unavailable(err, "image could not be stored")
	}
	product.ImageURL = url

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	log.Printf("[PRODUCT] [INFO] product %s image stored at %s", product.ID, url)
	return product, nil
}
