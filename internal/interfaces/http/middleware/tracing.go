package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys added by SpanAnnotator
const (
	AttrRequestID = attribute.Key("request_id")
	AttrUserID    = attribute.Key("user_id")
)

// TracingConfig selects the otelgin server middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths get no server span, e.g. health probes
	SkipPaths []string
}

// TracingWithConfig starts a server span per request and extracts the
// incoming trace context. It is a pass-through when tracing is disabled.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !slices.Contains(cfg.SkipPaths, r.URL.Path)
	}))
}

// SpanAnnotator tags the server span once the handler returns, so the user
// set by the auth middleware further down the chain is known. Handler errors
// recorded with c.Error become span events and a 5xx marks the span failed.
func SpanAnnotator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := GetRequestID(c); id != "" {
			span.SetAttributes(AttrRequestID.String(id))
		}
		if id := GetUserID(c); id != "" {
			span.SetAttributes(AttrUserID.String(id))
		}
		for _, err := range c.Errors {
			span.RecordError(err.Err)
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
