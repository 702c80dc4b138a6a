package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	tasksphere_errors "tasksphere/pkg/errors"
	"tasksphere/pkg/logger"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{tasksphere_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{tasksphere_errors.ErrInvalidTransition, http.StatusBadRequest, "INVALID_INPUT"},
		{tasksphere_errors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{tasksphere_errors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{tasksphere_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{tasksphere_errors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{tasksphere_errors.ErrTooLarge, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
		{tasksphere_errors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		status, code := statusForError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestErrorHandlerLogsServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	l := &logger.Logger{Logger: zap.New(core)}

	engine := gin.New()
	engine.Use(ErrorHandler(l))
	engine.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("boom"))
	})
	engine.GET("/missing", func(c *gin.Context) {
		c.Error(tasksphere_errors.ErrNotFound)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request failed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "/boom", fields["path"])
	assert.Equal(t, http.MethodGet, fields["method"])

	// Client errors map to their status without a server-error log line.
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, logs.Len())
}
