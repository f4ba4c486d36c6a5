// Package worker fulfils queued orders: it reserves stock item by item and
// records the outcome on the order.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"widgetstore/internal/cache"
	"widgetstore/internal/models"
	"widgetstore/internal/repository"
)

var ErrInvalidMessage = errors.New("invalid order processing message")

type OrderProcessor struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	cache    cache.ProductCache
	now      func() time.Time
}

func NewOrderProcessor(orders repository.OrderRepository, products repository.ProductRepository, productCache cache.ProductCache, now func() time.Time) *OrderProcessor {
	if productCache == nil {
		productCache = cache.Nop{}
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &OrderProcessor{
		orders:   orders,
		products: products,
		cache:    productCache,
		now:      now,
	}
}

// Handle is the queue.Handler entry point.
func (p *OrderProcessor) Handle(ctx context.Context, body []byte) error {
	var msg models.OrderProcessingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.OrderID == "" {
		return fmt.Errorf("%w: missing orderId", ErrInvalidMessage)
	}

	_, err := p.Process(ctx, msg)
	return err
}

// Process moves the order to Processing, then decrements stock for each item
// in message order. The first item that cannot be fulfilled stops the loop
// and fails the order; decrements already written are kept. A missing order
// or a failed order write is returned so the transport redelivers.
//
// Redelivery of a message that was already processed decrements stock again.
func (p *OrderProcessor) Process(ctx context.Context, msg models.OrderProcessingMessage) (*models.Order, error) {
	log.Printf("[WORKER] [INFO] processing order %s (%d items)", msg.OrderID, len(msg.Items))

	order, err := p.orders.Get(ctx, msg.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("[WORKER] [ERROR] order not found: %s", msg.OrderID)
		return nil, fmt.Errorf("order %s: %w", msg.OrderID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read order %s: %w", msg.OrderID, err)
	}

	order.Status = models.OrderStatusProcessing
	if err := p.orders.Upsert(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order %s processing: %w", order.ID, err)
	}

	started := p.now()
	success := true
	for _, item := range msg.Items {
		if err := p.reserve(ctx, item); err != nil {
			log.Printf("[WORKER] [ERROR] order %s item %s: %v", order.ID, item.ProductID, err)
			success = false
			break
		}
	}

	if success {
		order.Status = models.OrderStatusProcessed
	} else {
		order.Status = models.OrderStatusFailed
	}
	order.SetProcessingTime(models.WholeMinutesBetween(started, p.now()))

	if err := p.orders.Upsert(ctx, order); err != nil {
		return nil, fmt.Errorf("finish order %s: %w", order.ID, err)
	}

	log.Printf("[WORKER] [INFO] order %s finished with status %s", order.ID, order.Status)
	return order, nil
}

func (p *OrderProcessor) reserve(ctx context.Context, item models.OrderProcessingItem) error {
	product, err := p.products.Get(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("read product: %w", err)
	}

	if product.StockQuantity < item.Quantity {
		return fmt.Errorf("insufficient stock: required %d, available %d", item.Quantity, product.StockQuantity)
	}

	product.StockQuantity -= item.Quantity
	product.Touch(p.now())
	if err := p.products.Upsert(ctx, product); err != nil {
		return fmt.Errorf("write product: %w", err)
	}

	if err := p.cache.Delete(ctx, product.ID); err != nil {
		log.Printf("[CACHE] [WARN] product %s cache invalidation failed: %v", product.ID, err)
	}
	log.Printf("[WORKER] [INFO] product %s stock now %d", product.ID, product.StockQuantity)
	return nil
}
