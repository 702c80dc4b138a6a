package middleware

import (
	"errors"
	"net/http"

	"tasksphere/internal/transport/httpdto"
	tasksphere_errors "tasksphere/pkg/errors"
	"tasksphere/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler maps errors attached by handlers to an HTTP status and a
// uniform error body. Handlers call c.Error(err) and return.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, code := statusForError(err)
		if status >= http.StatusInternalServerError && l != nil {
			l.ErrorCtx(c.Request.Context(), "request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err))
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, tasksphere_errors.ErrInvalidInput),
		errors.Is(err, tasksphere_errors.ErrInvalidTransition):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, tasksphere_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, tasksphere_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, tasksphere_errors.ErrNotFound),
		errors.Is(err, tasksphere_errors.ErrNoActiveSprint):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, tasksphere_errors.ErrConflict),
		errors.Is(err, tasksphere_errors.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, tasksphere_errors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "TOO_LARGE"
	case errors.Is(err, tasksphere_errors.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, tasksphere_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
