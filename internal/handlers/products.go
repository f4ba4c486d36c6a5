package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/services"
)

/*
GET /products
- pagination is optional: both page and limit must be given to page
- an explicit empty category is rejected
*/
func GetProducts(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit page=%s limit=%s category=%s search=%s",
			route,
			c.Query("page"),
			c.Query("limit"),
			c.Query("category"),
			c.Query("search"),
		)

		filter := services.ProductFilter{Search: strings.TrimSpace(c.Query("search"))}
		if category, ok := c.GetQuery("category"); ok {
			filter.Category = &category
		}

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			filter.Page = page
			filter.Limit = limit
		}

		result, err := products.List(c.Request.Context(), filter)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d of %d products", route, len(result.Items), result.Total)
		c.JSON(http.StatusOK, result)
	}
}

func GetProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		product, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
