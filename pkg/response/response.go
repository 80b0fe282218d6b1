package response

import (
	"net/http"

	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the caller's id when the request carried a valid token.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// ParseUUIDParam reads a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + name)
	}
	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)
	errCode := apperror.MapErrorToCode(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", errCode),
			zap.Error(err),
		)
		if errCode == apperror.CodeStorage {
			message = apperror.ErrStorage.Error()
		} else {
			message = apperror.ErrInternal.Error()
		}
	}

	c.JSON(code, gin.H{"error": message, "code": errCode})
}

// BindingError answers a request whose body or query failed binding.
func BindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": validator.FormatValidationError(err),
		"code":  apperror.CodeValidation,
	})
}
