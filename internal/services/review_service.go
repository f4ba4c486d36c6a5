package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"widgetstore/internal/apperr"
	"widgetstore/internal/models"
	"widgetstore/internal/repository"
)

type ReviewInput struct {
	Content string
	Rating  int
}

type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	now      func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, now func() time.Time) *ReviewService {
	if now == nil {
		now = utcNow
	}
	return &ReviewService{reviews: reviews, products: products, now: now}
}

func (s *ReviewService) ensureProduct(ctx context.Context, productID string) error {
	_, err := s.products.Get(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Product %s not found", productID)
	}
	if err != nil {
		return apperr.Unavailable(err, "catalog unavailable")
	}
	return nil
}

func (s *ReviewService) Create(ctx context.Context, productID, userID string, in ReviewInput) (*models.Review, error) {
	content := strings.TrimSpace(in.Content)
	if n := utf8.RuneCountInString(content); n < 10 || n > 1000 {
		return nil, apperr.BadRequest("Review content must be between 10 and 1000 characters")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.BadRequest("Rating must be between 1 and 5")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:         newID(),
		ProductID:  productID,
		UserID:     userID,
		Content:    content,
		Rating:     in.Rating,
		ReviewDate: s.now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, apperr.Unavailable(err, "review could not be saved")
	}

	log.Printf("[REVIEW] [INFO] review %s created for product %s", review.ID, productID)
	return review, nil
}

func (s *ReviewService) ListForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Unavailable(err, "review store unavailable")
	}
	return reviews, nil
}
