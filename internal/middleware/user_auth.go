package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "userId"
	ContextRole   = "role"
)

var errMissingToken = errors.New("missing token")

func parseBearer(header, secret string) (jwt.MapClaims, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, errMissingToken
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("token claims invalid")
	}
	return claims, nil
}

// authenticate aborts the request with 401 unless it carries a valid token.
func authenticate(c *gin.Context, secret string) bool {
	claims, err := parseBearer(c.GetHeader("Authorization"), secret)
	if errors.Is(err, errMissingToken) {
		log.Println("[AUTH] [ERROR] missing token")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return false
	}
	if err != nil {
		log.Println("[AUTH] [ERROR] token validation failed:", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	userID, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		log.Println("[AUTH] [ERROR] userId claim missing")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	role, _ := claims["role"].(string)

	c.Set(ContextUserID, userID)
	c.Set(ContextRole, role)
	return true
}

// UserAuth validates user JWT tokens and injects userId and role into the
// context.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret) {
			return
		}
		c.Next()
	}
}
