package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfilingWithConfig(t *testing.T) {
	labelsOf := func(c *gin.Context) map[string]string {
		got := map[string]string{}
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			got[k] = v
			return true
		})
		return got
	}

	var seen map[string]string
	r := gin.New()
	r.Use(ProfilingWithConfig(DefaultProfilingConfig()))
	r.GET("/api/Item/GetById/:id", func(c *gin.Context) { seen = labelsOf(c) })
	r.GET("/health", func(c *gin.Context) { seen = labelsOf(c) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/Item/GetById/4", nil))
	assert.Equal(t, map[string]string{"route": "/api/Item/GetById/:id", "method": "GET"}, seen)

	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, seen)
}

func TestProfilingWithConfig_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(ProfilingWithConfig(ProfilingConfig{}))
	r.GET("/", okHandler)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
