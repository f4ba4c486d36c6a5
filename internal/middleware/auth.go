package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/models"
)

// AuthGuard authenticates like UserAuth and then requires one of
// allowedRoles. With no roles it only authenticates.
func AuthGuard(secret string, allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret) {
			return
		}

		if len(allowedRoles) > 0 {
			role := models.UserRole(c.GetString(ContextRole))
			match := false
			for _, r := range allowedRoles {
				if role == r {
					match = true
					break
				}
			}
			if !match {
				log.Printf("[AUTH] [ERROR] role %q denied for %s", role, c.FullPath())
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}
		c.Next()
	}
}

func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleAdmin)
}
