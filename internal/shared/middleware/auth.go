package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/port/outbound"
	apperrors "github.com/uniedit/invite-server/internal/shared/errors"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
)

// RequireAuth returns a middleware that validates bearer tokens.
// On success it sets user_id and email in the context.
func RequireAuth(validator outbound.TokenValidatorPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abort(c, apperrors.Unauthorized("unauthorized", "Authorization header required"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			_ = c.Error(err)
			abort(c, apperrors.Unauthorized("invalid_token", "Invalid or expired token"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// GetEmail returns the authenticated email from context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
