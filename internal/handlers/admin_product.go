package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/models"
	"widgetstore/internal/services"
)

type productRequest struct {
	Name          string       `json:"name" binding:"required"`
	Description   string       `json:"description" binding:"required"`
	Price         models.Money `json:"price"`
	StockQuantity int          `json:"stockQuantity" binding:"gte=0"`
	Category      string       `json:"category" binding:"required"`
	SKU           string       `json:"sku" binding:"required"`
}

func (r productRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		Category:      r.Category,
		SKU:           r.SKU,
	}
}

type stockRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

func CreateProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := products.Create(c.Request.Context(), req.input())
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		log.Printf("[%s] created product %s", route, product.ID)
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := products.Update(c.Request.Context(), c.Param("id"), req.input())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func AdjustProductStock(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/products/:id/stock"
		defer handlePanic(c, route)

		var req stockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := products.AdjustStock(c.Request.Context(), c.Param("id"), *req.Delta)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func UploadProductImage(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products/:id/image"
		defer handlePanic(c, route)

		upload, err := parseImageUpload(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		file, err := upload.Open()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "uploaded file could not be read")
			return
		}
		defer file.Close()

		product, err := products.UploadImage(
			c.Request.Context(),
			c.Param("id"),
			upload.Filename,
			upload.Header.Get("Content-Type"),
			upload.Size,
			file,
		)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		if err := products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
