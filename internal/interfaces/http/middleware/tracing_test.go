package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doorsets/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	r := gin.New()
	r.Use(RequestID())
	r.Use(Tracing(TracingConfig{ServiceName: "doorsets", Enabled: true, TracerProvider: tp}))
	r.Use(SpanEnricher())
	r.GET("/api/Item/GetById/:id", func(c *gin.Context) {
		c.Set(JWTClaimsKey, &auth.Claims{UserID: 9})
		c.Set(JWTUserIDKey, uint(9))
		c.Status(http.StatusOK)
	})
	r.GET("/api/Item/Missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/api/Item/GetById/3", nil)
	req.Header.Set(RequestIDHeader, "rid-7")
	serve(r, req)
	serve(r, httptest.NewRequest(http.MethodGet, "/api/Item/Missing", nil))

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "GET /api/Item/GetById/:id", ok.Name())
	attrs := spanAttrs(ok)
	assert.Equal(t, "rid-7", attrs["request_id"].AsString())
	assert.EqualValues(t, 9, attrs["user_id"].AsInt64())
	assert.NotEqual(t, codes.Error, ok.Status().Code)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(TracingConfig{}), SpanEnricher())
	r.GET("/", okHandler)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
