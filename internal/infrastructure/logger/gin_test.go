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

func newTestRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	r.Use(Recovery(l), GinMiddleware(l))
	return r
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/cart", func(c *gin.Context) {
		FromContext(c.Request.Context()).Debug("handler sees request logger")
		c.Header(SessionKeyHeader, "issued-key")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(SessionKeyHeader, "secret-guest-key")
	r.ServeHTTP(w, req)

	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, true, fields["guest_key_presented"])
	assert.Equal(t, true, fields["guest_key_issued"])
	for _, v := range fields {
		assert.NotEqual(t, "secret-guest-key", v)
	}
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_INTERNAL"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Len(t, recorded.FilterMessage("Panic recovered").All(), 1)
}
