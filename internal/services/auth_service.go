package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"widgetstore/internal/apperr"
	"widgetstore/internal/models"
	"widgetstore/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	Address        string
	PhoneNumber    string
	Role           models.UserRole
	AdminSecretKey string
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type AuthService struct {
	users          repository.UserRepository
	jwtSecret      string
	accessTTL      time.Duration
	adminSecretKey string
	now            func() time.Time
}

func NewAuthService(users repository.UserRepository, jwtSecret string, accessTTL time.Duration, adminSecretKey string, now func() time.Time) *AuthService {
	if now == nil {
		now = utcNow
	}
	return &AuthService{
		users:          users,
		jwtSecret:      jwtSecret,
		accessTTL:      accessTTL,
		adminSecretKey: adminSecretKey,
		now:            now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return nil, apperr.BadRequest("Invalid email format")
	}
	if n := len(in.Password); n < 6 || n > 100 {
		return nil, apperr.BadRequest("Password must be between 6 and 100 characters")
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	switch role {
	case models.RoleCustomer:
	case models.RoleAdmin:
		if s.adminSecretKey == "" || subtle.ConstantTimeCompare([]byte(in.AdminSecretKey), []byte(s.adminSecretKey)) != 1 {
			log.Println("[AUTH] [ERROR] admin registration rejected for", email)
			return nil, apperr.Forbidden("Invalid admin secret key")
		}
	default:
		return nil, apperr.BadRequest("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.BadRequest("Password must not exceed 72 bytes")
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           newID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		Address:      strings.TrimSpace(in.Address),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Unavailable(err, "user could not be saved")
	}

	log.Println("[AUTH] [INFO] user registered:", user.Email)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Println("[AUTH] [ERROR] login invalid credentials")
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, apperr.Unavailable(err, "user store unavailable")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Println("[AUTH] [ERROR] login invalid credentials")
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		log.Println("[AUTH] [ERROR] login token generation failed:", err)
		return nil, err
	}

	log.Println("[AUTH] [INFO] user login succeeded:", user.Email)
	return &LoginResult{Token: token, User: *user}, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"role":   string(user.Role),
		"name":   user.Name,
		"exp":    s.now().Add(s.accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
