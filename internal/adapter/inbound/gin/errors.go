package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/domain/invitation"
	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/shared/logger"
)

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var validationErr *invitation.ValidationErrors
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, model.ValidationErrorResponse{
			Code:   "validation_failed",
			Base:   validationErr.Result.Base(),
			Fields: validationErr.Result.Fields(),
		})
		return
	}

	var statusCode int
	var errorCode string
	var message string

	switch {
	case errors.Is(err, invitation.ErrInvitationNotFound):
		statusCode = http.StatusNotFound
		errorCode = "invitation_not_found"
		message = "Invitation not found"

	case errors.Is(err, invitation.ErrTargetNotFound):
		statusCode = http.StatusNotFound
		errorCode = "target_not_found"
		message = "Project or organization not found"

	case errors.Is(err, invitation.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errorCode = "user_not_found"
		message = "User not found"

	case errors.Is(err, invitation.ErrForbidden):
		statusCode = http.StatusForbidden
		errorCode = "forbidden"
		message = "You cannot manage this invitation"

	case errors.Is(err, invitation.ErrInvitationNotForYou):
		statusCode = http.StatusForbidden
		errorCode = "invitation_not_for_you"
		message = "This invitation was sent to someone else"

	case errors.Is(err, invitation.ErrInvitationNotPending):
		statusCode = http.StatusConflict
		errorCode = "invitation_not_pending"
		message = "Invitation is no longer pending"

	case errors.Is(err, invitation.ErrInvalidTargetKind):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_target"
		message = "Invalid target"

	case errors.Is(err, invitation.ErrInvalidRole):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_role"
		message = "Invalid role"

	case errors.Is(err, invitation.ErrInvalidRequest):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_request"
		message = "Invalid request"

	default:
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errorCode = "internal_error"
		message = "Internal server error"
	}

	c.JSON(statusCode, model.ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}
