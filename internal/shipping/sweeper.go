// Package shipping promotes processed orders to shipped on a schedule.
package shipping

import (
	"context"
	"fmt"
	"log"
	"time"

	"widgetstore/internal/repository"
)

type SweepResult struct {
	Scanned int `json:"scanned"`
	Shipped int `json:"shipped"`
	Failed  int `json:"failed"`
}

type Sweeper struct {
	orders repository.OrderRepository
	now    func() time.Time
}

func NewSweeper(orders repository.OrderRepository, now func() time.Time) *Sweeper {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Sweeper{orders: orders, now: now}
}

// Sweep ships every Processed order that has no shipping date yet. A failed
// write is logged and skipped; only a failed scan aborts the run.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	orders, err := s.orders.ListAwaitingShipment(ctx)
	if err != nil {
		return result, fmt.Errorf("list orders awaiting shipment: %w", err)
	}
	result.Scanned = len(orders)
	log.Printf("[SHIPPING] [INFO] %d orders awaiting shipment", len(orders))

	for i := range orders {
		order := &orders[i]
		order.MarkShipped(s.now())

		if err := s.orders.Upsert(ctx, order); err != nil {
			log.Printf("[SHIPPING] [ERROR] order %s: %v", order.ID, err)
			result.Failed++
			continue
		}
		result.Shipped++
		log.Printf("[SHIPPING] [INFO] order %s shipped after %d days", order.ID, *order.Metrics.OrderToShipDays)
	}

	log.Printf("[SHIPPING] [INFO] sweep done: shipped=%d failed=%d", result.Shipped, result.Failed)
	return result, nil
}
