package services

import (
	"context"
	"errors"
	"log"
	"time"

	"widgetstore/internal/apperr"
	"widgetstore/internal/models"
	"widgetstore/internal/queue"
	"widgetstore/internal/repository"
)

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type UpdateOrderInput struct {
	Status       string
	ShippingDate *time.Time
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher queue.Publisher
	queueName string
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	publisher queue.Publisher,
	queueName string,
	now func() time.Time,
) *OrderService {
	if now == nil {
		now = utcNow
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		publisher: publisher,
		queueName: queueName,
		now:       now,
	}
}

// Create validates every item against the catalog, snapshots unit prices and
// persists a Pending order before queueing it for fulfillment. Validation
// failures leave nothing behind. Stock is not checked here; the worker does
// that when the order is processed.
//
// If the order was saved but the publish failed, the order is returned
// together with an Unavailable error. It stays Pending until someone
// requeues it.
func (s *OrderService) Create(ctx context.Context, userID string, items []OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apperr.BadRequest("order must contain at least one item")
	}

	log.Printf("[ORDER] [INFO] creating order for user %s with %d items", userID, len(items))

	orderItems := make([]models.OrderItem, 0, len(items))
	total := models.Money{}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperr.BadRequest("quantity for product %s must be greater than zero", item.ProductID)
		}

		product, err := s.products.Get(ctx, item.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[ORDER] [ERROR] product not found: %s", item.ProductID)
			return nil, apperr.NotFound("Product %s not found", item.ProductID)
		}
		if err != nil {
			return nil, apperr.Unavailable(err, "catalog unavailable")
		}
		if !product.IsAvailable {
			log.Printf("[ORDER] [ERROR] product not available: %s", item.ProductID)
			return nil, apperr.BadRequest("Product %s is not available for purchase", product.Name)
		}

		line := models.OrderItem{
			ProductID:    product.ID,
			Quantity:     item.Quantity,
			PriceAtOrder: product.Price,
		}
		orderItems = append(orderItems, line)
		total = total.Plus(line.PriceAtOrder.Times(line.Quantity))
	}

	order := &models.Order{
		ID:          newID(),
		Type:        models.DocumentTypeOrder,
		UserID:      userID,
		Status:      models.OrderStatusPending,
		OrderDate:   s.now(),
		TotalAmount: total,
		Items:       orderItems,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperr.Unavailable(err, "order could not be saved")
	}
	log.Printf("[ORDER] [INFO] order %s created, total %s", order.ID, order.TotalAmount.StringFixed(2))

	msg := models.NewOrderProcessingMessage(order)
	if err := queue.PublishJSON(ctx, s.publisher, s.queueName, order.ID, msg); err != nil {
		log.Printf("[ORDER] [ERROR] order %s saved but not queued: %v", order.ID, err)
		return order, apperr.Unavailable(err, "order %s was saved but could not be queued for processing", order.ID)
	}
	log.Printf("[ORDER] [INFO] order %s queued on %s", order.ID, s.queueName)

	return order, nil
}

// load reads an order; an empty userID skips the ownership check.
func (s *OrderService) load(ctx context.Context, orderID, userID string) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	if userID == "" {
		order, err = s.orders.Get(ctx, orderID)
	} else {
		order, err = s.orders.GetForUser(ctx, orderID, userID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Order %s not found", orderID)
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "order store unavailable")
	}
	return order, nil
}

// Get returns the order if it belongs to userID. Pass an empty userID for
// admin reads.
func (s *OrderService) Get(ctx context.Context, orderID, userID string) (*models.Order, error) {
	return s.load(ctx, orderID, userID)
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unavailable(err, "order store unavailable")
	}
	return orders, nil
}

// Update sets the status and, when given, the shipping date together with
// the days-to-ship metric. An empty userID updates any order.
func (s *OrderService) Update(ctx context.Context, orderID, userID string, in UpdateOrderInput) (*models.Order, error) {
	status, ok := models.ParseOrderStatus(in.Status)
	if !ok {
		return nil, apperr.BadRequest("unknown order status %q", in.Status)
	}

	order, err := s.load(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	order.Status = status
	if in.ShippingDate != nil {
		order.SetShippingDate(in.ShippingDate.UTC())
	}

	if err := s.orders.Upsert(ctx, order); err != nil {
		return nil, apperr.Unavailable(err, "order could not be saved")
	}
	log.Printf("[ORDER] [INFO] order %s updated to %s", order.ID, order.Status)
	return order, nil
}

func (s *OrderService) Metrics(ctx context.Context) (models.OrderMetricsReport, error) {
	orders, err := s.orders.ListWithMetrics(ctx)
	if err != nil {
		return models.OrderMetricsReport{}, apperr.Unavailable(err, "order store unavailable")
	}
	return AggregateMetrics(orders), nil
}
