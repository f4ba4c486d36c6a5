package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/services"
)

type reviewRequest struct {
	Content string `json:"content" binding:"required,min=10,max=1000"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}

func GetProductReviews(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id/reviews"
		defer handlePanic(c, route)

		list, err := reviews.ListForProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateProductReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/reviews"
		defer handlePanic(c, route)

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		review, err := reviews.Create(c.Request.Context(), c.Param("id"), currentUserID(c), services.ReviewInput{
			Content: req.Content,
			Rating:  req.Rating,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}
