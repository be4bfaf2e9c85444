package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing creates HTTP request spans via otelgin and tags them with the
// request ID and, once authentication has run, the user ID. With no
// tracer provider configured the spans are no-ops.
func Tracing(serviceName string) gin.HandlerFunc {
	otel := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		otel(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := c.GetString(RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if userID := c.GetString(JWTUserIDKey); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}
	}
}
