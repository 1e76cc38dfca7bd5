package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a recording global tracer provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	previous := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(previous)
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_CartRequest(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(DefaultTracingConfig()), SpanEnricher())
	router.GET("/api/v1/cart", func(c *gin.Context) {
		c.Header(SessionKeyHeader, "fresh-key")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Request-ID", "req-123")
	req.Header.Set(SessionKeyHeader, "secret-guest-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	span := findSpan(t, sr, "GET /api/v1/cart")
	attrs := attrMap(span)
	assert.Equal(t, "req-123", attrs["request_id"].AsString())
	assert.True(t, attrs["cart.guest_key_presented"].AsBool())
	assert.True(t, attrs["cart.guest_key_issued"].AsBool())
	for _, kv := range span.Attributes() {
		assert.NotEqual(t, "secret-guest-key", kv.Value.Emit(), "session key must never be recorded")
	}
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(DefaultTracingConfig()), SpanEnricher())
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, codes.Error, findSpan(t, sr, "GET /boom").Status().Code)
	assert.NotEqual(t, codes.Error, findSpan(t, sr, "GET /missing").Status().Code)
}

func TestTracing_SkipsHealth(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(DefaultTracingConfig()))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, sr.Ended())
}

func TestGetRequestID(t *testing.T) {
	var got string
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		got = getRequestID(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("r", MaxRequestIDLength+10))
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, got, MaxRequestIDLength)
}
