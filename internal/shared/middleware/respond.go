package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/uniedit/invite-server/internal/model"
	apperrors "github.com/uniedit/invite-server/internal/shared/errors"
)

// abort stops the chain and writes err as a JSON error body.
func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, model.ErrorResponse{
		Code:    err.Code,
		Message: err.Message,
	})
}
