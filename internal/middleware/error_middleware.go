package middleware

import (
	"errors"

	"marketchat/internal/services"
	"marketchat/internal/transport/httpdto"
	marketchat_errors "marketchat/pkg/errors"
	"marketchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps sentinel errors attached via c.Error to the HTTP error
// envelope. Handlers push errors and return; status codes live in one place.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := services.HTTPStatus(err)
		if l != nil && status >= 500 {
			l.Errorf("request error: %s", err.Error())
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), errorCode(err)))
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, marketchat_errors.ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, marketchat_errors.ErrInvalidOperation):
		return "INVALID_OPERATION"
	case errors.Is(err, marketchat_errors.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, marketchat_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, marketchat_errors.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, marketchat_errors.ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
