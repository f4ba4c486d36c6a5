package models

import "time"

const DocumentTypeOrder = "Order"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusProcessed  OrderStatus = "Processed"
	OrderStatusFailed     OrderStatus = "Failed"
	OrderStatusShipped    OrderStatus = "Shipped"
)

// ParseOrderStatus is case-sensitive.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch status := OrderStatus(raw); status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusProcessed, OrderStatusFailed, OrderStatusShipped:
		return status, true
	}
	return "", false
}

// OrderItem is embedded in the order document. PriceAtOrder is the unit price
// captured when the order was placed and is never recomputed.
type OrderItem struct {
	ProductID    string `bson:"productId" json:"productId"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	PriceAtOrder Money  `bson:"priceAtOrder" json:"priceAtOrder"`
}

type OrderMetrics struct {
	ProcessingTimeMinutes *int `bson:"processingTimeMinutes" json:"processingTimeMinutes"`
	OrderToShipDays       *int `bson:"orderToShipDays" json:"orderToShipDays"`
}

// Order defines the persisted order document.
type Order struct {
	ID           string        `bson:"_id" json:"id"`
	Type         string        `bson:"type" json:"-"`
	UserID       string        `bson:"userId" json:"userId"`
	Status       OrderStatus   `bson:"status" json:"status"`
	OrderDate    time.Time     `bson:"orderDate" json:"orderDate"`
	ShippingDate *time.Time    `bson:"shippingDate,omitempty" json:"shippingDate,omitempty"`
	TotalAmount  Money         `bson:"totalAmount" json:"totalAmount"`
	Items        []OrderItem   `bson:"items" json:"items"`
	Metrics      *OrderMetrics `bson:"metrics,omitempty" json:"metrics,omitempty"`
}

func (o *Order) ensureMetrics() *OrderMetrics {
	if o.Metrics == nil {
		o.Metrics = &OrderMetrics{}
	}
	return o.Metrics
}

func (o *Order) SetProcessingTime(minutes int) {
	o.ensureMetrics().ProcessingTimeMinutes = &minutes
}

// SetShippingDate stamps the shipping date and the whole days elapsed since
// the order date.
func (o *Order) SetShippingDate(at time.Time) {
	o.ShippingDate = &at
	days := WholeDaysBetween(o.OrderDate, at)
	o.ensureMetrics().OrderToShipDays = &days
}

func (o *Order) MarkShipped(at time.Time) {
	o.Status = OrderStatusShipped
	o.SetShippingDate(at)
}

// ComputeTotal sums quantity * priceAtOrder over the items.
func (o *Order) ComputeTotal() Money {
	total := Money{}
	for _, item := range o.Items {
		total = total.Plus(item.PriceAtOrder.Times(item.Quantity))
	}
	return total
}

// WholeDaysBetween truncates toward zero, it does not round.
func WholeDaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// WholeMinutesBetween truncates toward zero, it does not round.
func WholeMinutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}
