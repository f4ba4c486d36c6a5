package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"widgetstore/internal/models"
	"widgetstore/internal/repository/memory"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(NewSweeper(memory.NewOrderStore(), nil), "every day at nine", time.Minute)
	assert.Error(t, err)

	_, err = NewScheduler(NewSweeper(memory.NewOrderStore(), nil), "0 0 9 * * *", time.Minute)
	assert.NoError(t, err)
}

func TestSchedulerRunsSweepAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	orders := memory.NewOrderStore(models.Order{ID: "o", Status: models.OrderStatusProcessed, OrderDate: time.Now().UTC()})
	scheduler, err := NewScheduler(NewSweeper(orders, nil), "* * * * * *", time.Minute)
	require.NoError(t, err)

	results := make(chan SweepResult, 10)
	scheduler.onSweep = func(r SweepResult, err error) {
		assert.NoError(t, err)
		results <- r
	}

	scheduler.Start(context.Background())

	select {
	case r := <-results:
		assert.Equal(t, 1, r.Shipped)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled sweep did not run")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)

	o, err := orders.Get(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, o.Status)
}
