package repository

import (
	"context"
	"errors"

	"widgetstore/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// ProductQuery filters catalog listings. Zero values mean "no filter";
// Limit 0 returns every match.
type ProductQuery struct {
	Category      string
	Search        string
	AvailableOnly bool
	Skip          int64
	Limit         int64
}

// ProductRepository reads and writes Product documents. Get returns the
// product regardless of its availability flag.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, query ProductQuery) ([]models.Product, int64, error)
	Upsert(ctx context.Context, product *models.Product) error
}

// OrderRepository reads and writes Order documents. Upsert is a blind
// overwrite of the whole document.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	GetForUser(ctx context.Context, id, userID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Upsert(ctx context.Context, order *models.Order) error
	ListAwaitingShipment(ctx context.Context) ([]models.Order, error)
	ListWithMetrics(ctx context.Context) ([]models.Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
}
