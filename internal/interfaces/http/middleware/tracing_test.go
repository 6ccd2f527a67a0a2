package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T, status int) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{
		ServiceName:    "test-service",
		Enabled:        true,
		TracerProvider: tp,
	}), SpanAttributes(), SpanErrorMarker())
	router.GET("/grid/sessions/:id", func(c *gin.Context) {
		c.Status(status)
	})
	return router, recorder
}

func attributesOf(span sdktrace.ReadOnlySpan) map[string]string {
	out := make(map[string]string)
	for _, kv := range span.Attributes() {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestTracing(t *testing.T) {
	t.Run("names the span by route and tags the session", func(t *testing.T) {
		router, recorder := newTracedRouter(t, http.StatusOK)
		w := serve(router, http.MethodGet, "/grid/sessions/abc", map[string]string{HeaderRequestID: "req-9"})
		assert.Equal(t, http.StatusOK, w.Code)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "GET /grid/sessions/:id", spans[0].Name())
		attrs := attributesOf(spans[0])
		assert.Equal(t, "req-9", attrs["request_id"])
		assert.Equal(t, "abc", attrs["grid.session_id"])
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("marks 404 as error", func(t *testing.T) {
		router, recorder := newTracedRouter(t, http.StatusNotFound)
		serve(router, http.MethodGet, "/grid/sessions/missing", nil)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "Not Found", spans[0].Status().Description)
	})

	t.Run("marks 5xx as error", func(t *testing.T) {
		router, recorder := newTracedRouter(t, http.StatusServiceUnavailable)
		serve(router, http.MethodGet, "/grid/sessions/abc", nil)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})
}

func TestTracingDisabled(t *testing.T) {
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}), SpanAttributes(), SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
