package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

// Tracing starts a server span per request with otelgin. Span names use the
// route pattern, e.g. "GET /api/Item/GetById/:id". SpanEnricher should
// follow it in the chain.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher adds the request ID and, once authentication has run, the
// user ID to the request span. Responses of 400 and above mark the span
// as failed.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := requestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}

		c.Next()

		if id := GetJWTUserID(c); id != 0 {
			span.SetAttributes(attribute.Int64("user_id", int64(id)))
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
