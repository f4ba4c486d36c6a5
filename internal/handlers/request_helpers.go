package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"widgetstore/internal/apperr"
	"widgetstore/internal/middleware"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondAppError maps a service error onto its HTTP status. Internal causes
// are logged but never echoed to the client.
func respondAppError(c *gin.Context, route string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s: %v", route, apperr.Kind(err), err)
	}
	respondWithError(c, status, route, apperr.Message(err))
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min", "gt", "gte":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, minimumFor(fieldError)))
			case "max", "lte":
				details = append(details, fmt.Sprintf("%s must be at most %s", field, fieldError.Param()))
			case "email":
				details = append(details, fmt.Sprintf("%s must be a valid email", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func minimumFor(fieldError validator.FieldError) string {
	if fieldError.Tag() == "gt" {
		return fieldError.Param() + " (exclusive)"
	}
	return fieldError.Param()
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
