package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/models"
	"widgetstore/internal/services"
)

type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6,max=100"`
	Name           string `json:"name" binding:"required"`
	Address        string `json:"address"`
	PhoneNumber    string `json:"phoneNumber"`
	Role           string `json:"role" binding:"omitempty,oneof=Customer Admin"`
	AdminSecretKey string `json:"adminSecretKey"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		user, err := auth.Register(c.Request.Context(), services.RegisterInput{
			Email:          req.Email,
			Password:       req.Password,
			Name:           req.Name,
			Address:        req.Address,
			PhoneNumber:    req.PhoneNumber,
			Role:           models.UserRole(req.Role),
			AdminSecretKey: req.AdminSecretKey,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

func Login(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		log.Printf("[%s] token issued for %s", route, result.User.ID)
		c.JSON(http.StatusOK, result)
	}
}
