package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/apperr"
	"widgetstore/internal/services"
)

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	Items []createOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

/* =========================
   CREATE ORDER
========================= */

// CreateOrder answers 201 with the Pending order. If the order was stored
// but could not be queued the answer is 503 and still carries the orderId.
func CreateOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items := make([]services.OrderItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, services.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		userID := currentUserID(c)
		order, err := orders.Create(c.Request.Context(), userID, items)
		if err != nil {
			if order != nil && errors.Is(err, apperr.ErrUnavailable) {
				log.Printf("[%s] order %s stored without queueing: %v", route, order.ID, err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error":   apperr.Message(err),
					"orderId": order.ID,
				})
				return
			}
			respondAppError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order created for user:", userID)
		c.JSON(http.StatusCreated, order)
	}
}

func GetOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		list, err := orders.ListForUser(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		order, err := orders.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOwnOrder changes status or shipping date of the caller's own order.
func UpdateOwnOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id"
		defer handlePanic(c, route)

		updateOrder(c, route, orders, currentUserID(c))
	}
}
