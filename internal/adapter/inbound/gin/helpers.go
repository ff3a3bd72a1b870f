package gin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/shared/middleware"
)

// GetUserIDFromContext extracts the authenticated user ID from gin context.
// Writes a 401 response and returns false if it is missing.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Code:    "unauthorized",
			Message: "User not authenticated",
		})
		return uuid.Nil, false
	}
	return userID, true
}

// parseUUIDParam parses a path parameter as a UUID.
// Writes a 400 response and returns false if it is malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_" + name,
			Message: "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
