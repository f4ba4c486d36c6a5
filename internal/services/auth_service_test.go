package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widgetstore/internal/apperr"
	"widgetstore/internal/models"
	"widgetstore/internal/repository/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "secret", time.Hour, "admin-key", nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "hunter22", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another1", Name: "Ada"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	result, err := svc.Login(ctx, "ADA@example.com", "hunter22")
	require.NoError(t, err)

	token, err := jwt.Parse(result.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID, claims["userId"])
	assert.Equal(t, "Customer", claims["role"])

	_, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "secret", time.Hour, "admin-key", nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "hunter22"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "12345"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "hunter22", Role: "Root"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestRegisterPasswordLongerThanBcryptLimit(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "secret", time.Hour, "admin-key", nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "long@example.com", Password: strings.Repeat("x", 80), Name: "Long"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "edge@example.com", Password: strings.Repeat("x", 72), Name: "Edge"})
	assert.NoError(t, err)
}

func TestRegisterAdminNeedsSecret(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "secret", time.Hour, "admin-key", nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "boss@example.com", Password: "hunter22", Role: models.RoleAdmin, AdminSecretKey: "guess"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	admin, err := svc.Register(ctx, RegisterInput{Email: "boss@example.com", Password: "hunter22", Role: models.RoleAdmin, AdminSecretKey: "admin-key"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	noKey := NewAuthService(memory.NewUserStore(), "secret", time.Hour, "", nil)
	_, err = noKey.Register(ctx, RegisterInput{Email: "boss@example.com", Password: "hunter22", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperr.ErrForbidden, "admin self-registration is closed without a configured key")
}
