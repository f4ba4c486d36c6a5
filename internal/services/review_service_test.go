package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widgetstore/internal/apperr"
	"widgetstore/internal/repository/memory"
)

func TestCreateReview(t *testing.T) {
	reviews := memory.NewReviewStore()
	svc := NewReviewService(reviews, memory.NewProductStore(widget("p", "1.00", 1)), clockAt(fixedNow))
	ctx := context.Background()

	review, err := svc.Create(ctx, "p", "u-1", ReviewInput{Content: "Works as described", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "p", review.ProductID)
	assert.Equal(t, fixedNow, review.ReviewDate)

	cases := map[string]ReviewInput{
		"short content": {Content: "too short", Rating: 3},
		"long content":  {Content: strings.Repeat("a", 1001), Rating: 3},
		"rating low":    {Content: "Works as described", Rating: 0},
		"rating high":   {Content: "Works as described", Rating: 6},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "p", "u-1", in)
			assert.ErrorIs(t, err, apperr.ErrBadRequest)
		})
	}

	_, err = svc.Create(ctx, "missing", "u-1", ReviewInput{Content: "Works as described", Rating: 5})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListReviewsNewestFirst(t *testing.T) {
	products := memory.NewProductStore(widget("p", "1.00", 1))
	reviews := memory.NewReviewStore()
	ctx := context.Background()

	older := NewReviewService(reviews, products, clockAt(fixedNow.Add(-time.Hour)))
	newer := NewReviewService(reviews, products, clockAt(fixedNow))
	_, err := older.Create(ctx, "p", "u-1", ReviewInput{Content: "First impressions", Rating: 3})
	require.NoError(t, err)
	_, err = newer.Create(ctx, "p", "u-2", ReviewInput{Content: "Second opinion here", Rating: 4})
	require.NoError(t, err)

	list, err := newer.ListForProduct(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 4, list[0].Rating)

	_, err = newer.ListForProduct(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
