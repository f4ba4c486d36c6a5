package models

// OrderProcessingMessage is the queue payload handed from order intake to the
// fulfillment worker.
type OrderProcessingMessage struct {
	OrderID string                `json:"orderId"`
	UserID  string                `json:"userId"`
	Items   []OrderProcessingItem `json:"items"`
}

type OrderProcessingItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func NewOrderProcessingMessage(order *Order) OrderProcessingMessage {
	items := make([]OrderProcessingItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderProcessingItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return OrderProcessingMessage{
		OrderID: order.ID,
		UserID:  order.UserID,
		Items:   items,
	}
}
