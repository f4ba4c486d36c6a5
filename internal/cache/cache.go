package cache

import (
	"context"
	"errors"

	"widgetstore/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// Nop never stores anything; every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.Product, error) { return nil, ErrCacheMiss }
func (Nop) Set(context.Context, *models.Product) error          { return nil }
func (Nop) Delete(context.Context, string) error                { return nil }
