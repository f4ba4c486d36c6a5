package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/middleware"
	"widgetstore/internal/services"
)

type Dependencies struct {
	JWTSecret string
	Auth      *services.AuthService
	Products  *services.ProductService
	Reviews   *services.ReviewService
	Orders    *services.OrderService
	Sweeper   ShippingSweeper
	Ping      func(ctx context.Context) error
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/healthz", Health(deps.Ping))

	r.POST("/auth/register", Register(deps.Auth))
	r.POST("/auth/login", Login(deps.Auth))

	r.GET("/products", GetProducts(deps.Products))
	r.GET("/products/:id", GetProduct(deps.Products))
	r.GET("/products/:id/reviews", GetProductReviews(deps.Reviews))

	userAuth := middleware.UserAuth(deps.JWTSecret)
	r.POST("/products/:id/reviews", userAuth, CreateProductReview(deps.Reviews))

	orders := r.Group("/orders")
	orders.Use(userAuth)
	{
		orders.POST("", CreateOrder(deps.Orders))
		orders.GET("", GetOrders(deps.Orders))
		orders.GET("/:id", GetOrder(deps.Orders))
		orders.PUT("/:id", UpdateOwnOrder(deps.Orders))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(deps.JWTSecret))
	{
		admin.POST("/products", CreateProduct(deps.Products))
		admin.PUT("/products/:id", UpdateProduct(deps.Products))
		admin.PATCH("/products/:id/stock", AdjustProductStock(deps.Products))
		admin.POST("/products/:id/image", UploadProductImage(deps.Products))
		admin.DELETE("/products/:id", DeleteProduct(deps.Products))

		admin.GET("/orders/metrics", GetOrderMetrics(deps.Orders))
		admin.PUT("/orders/:id", UpdateOrder(deps.Orders))

		if deps.Sweeper != nil {
			admin.POST("/shipping/sweep", TriggerShippingSweep(deps.Sweeper))
		}
	}
}
