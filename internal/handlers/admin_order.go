package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/services"
	"widgetstore/internal/shipping"
)

type updateOrderRequest struct {
	Status       string     `json:"status" binding:"required"`
	ShippingDate *time.Time `json:"shippingDate"`
}

// ShippingSweeper is the manual trigger for the shipping sweep.
type ShippingSweeper interface {
	Sweep(ctx context.Context) (shipping.SweepResult, error)
}

// UpdateOrder lets an admin change any order.
func UpdateOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id"
		defer handlePanic(c, route)

		updateOrder(c, route, orders, "")
	}
}

// updateOrder applies the request to the order; an empty userID means admin
// scope, otherwise the order must belong to userID.
func updateOrder(c *gin.Context, route string, orders *services.OrderService, userID string) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := orders.Update(c.Request.Context(), c.Param("id"), userID, services.UpdateOrderInput{
		Status:       req.Status,
		ShippingDate: req.ShippingDate,
	})
	if err != nil {
		respondAppError(c, route, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func GetOrderMetrics(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/metrics"
		defer handlePanic(c, route)

		report, err := orders.Metrics(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func TriggerShippingSweep(sweeper ShippingSweeper) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/shipping/sweep"
		defer handlePanic(c, route)

		result, err := sweeper.Sweep(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "shipping sweep failed")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
