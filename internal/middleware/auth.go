package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/realorai/internal/entity"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}

func (m *AuthMiddleware) parseSubject(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperror.New(http.StatusUnauthorized, "invalid or expired token", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, apperror.New(http.StatusUnauthorized, "invalid token claims", apperror.ErrUnauthorized)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperror.New(http.StatusUnauthorized, "invalid token subject", apperror.ErrUnauthorized)
	}
	return id, nil
}

// authenticate resolves the token to a live, enabled account.
func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) (*entity.User, error) {
	userID, err := m.parseSubject(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := m.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "user not found", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}
	return user, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.ResponseError(c, apperror.New(http.StatusUnauthorized, "authorization required", apperror.ErrUnauthorized))
			c.Abort()
			return
		}

		user, err := m.authenticate(c, tokenString)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		c.Set(response.ContextUserID, user.ID.String())
		c.Set(response.ContextUser, user)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if user, err := m.authenticate(c, tokenString); err == nil {
				c.Set(response.ContextUserID, user.ID.String())
				c.Set(response.ContextUser, user)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(response.ContextUser)
		user, ok := value.(*entity.User)
		if !exists || !ok {
			response.ResponseError(c, apperror.New(http.StatusUnauthorized, "user not authenticated", apperror.ErrUnauthorized))
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			response.ResponseError(c, apperror.New(http.StatusForbidden, "admin access required", apperror.ErrForbidden))
			c.Abort()
			return
		}

		c.Next()
	}
}
