package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(entries []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == msg {
			return &entries[i]
		}
	}
	return nil
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		core, recorded := observer.New(zapcore.DebugLevel)
		router := gin.New()
		router.Use(func(c *gin.Context) { c.Set(RequestIDContextKey, "rid"); c.Next() })
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/x", func(c *gin.Context) {
			assert.Equal(t, "rid", RequestID(c.Request.Context()))
			c.Status(tt.status)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?a=1", nil))

		entry := findEntry(recorded.All(), "HTTP Request")
		require.NotNil(t, entry)
		assert.Equal(t, tt.level, entry.Level)
		fields := entry.ContextMap()
		assert.Equal(t, "rid", fields["request_id"])
		assert.Equal(t, "a=1", fields["query"])
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"succeeded":false`)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.NotNil(t, findEntry(recorded.All(), "Panic recovered"))
}
