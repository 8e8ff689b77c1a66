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

func init() {
	gin.SetMode(gin.TestMode)
}

// findRequestLog picks the access-log entry out of the recorded output
func findRequestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no HTTP Request log entry recorded")
	return observer.LoggedEntry{}
}

func serveWithMiddleware(level zapcore.Level, register func(*gin.Engine), req *http.Request) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	engine := gin.New()
	engine.Use(GinMiddleware(zap.New(core)))
	register(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w, recorded
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs a successful request at info", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/expeditions", nil)
		w, recorded := serveWithMiddleware(zapcore.InfoLevel, func(e *gin.Engine) {
			e.GET("/expeditions", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "ok"})
			})
		}, req)

		assert.Equal(t, http.StatusOK, w.Code)
		entry := findRequestLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
	})

	t.Run("logs a 4xx at warn", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bad", nil)
		w, recorded := serveWithMiddleware(zapcore.WarnLevel, func(e *gin.Engine) {
			e.GET("/bad", func(c *gin.Context) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			})
		}, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		entry := findRequestLog(t, recorded)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	})

	t.Run("logs a 5xx at error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		w, recorded := serveWithMiddleware(zapcore.ErrorLevel, func(e *gin.Engine) {
			e.GET("/boom", func(c *gin.Context) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			})
		}, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		entry := findRequestLog(t, recorded)
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})

	t.Run("includes the query string when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/expeditions?status=active&page=1", nil)
		_, recorded := serveWithMiddleware(zapcore.InfoLevel, func(e *gin.Engine) {
			e.GET("/expeditions", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "ok"})
			})
		}, req)

		entry := findRequestLog(t, recorded)
		found := false
		for _, field := range entry.Context {
			if field.Key == "query" {
				found = true
				assert.Contains(t, field.String, "status=active")
			}
		}
		assert.True(t, found, "query should be logged")
	})

	t.Run("carries standard access-log fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/expeditions", nil)
		req.Header.Set("User-Agent", "corsair-cli/1.0")
		_, recorded := serveWithMiddleware(zapcore.InfoLevel, func(e *gin.Engine) {
			e.POST("/expeditions", func(c *gin.Context) {
				c.JSON(http.StatusCreated, gin.H{"id": 1})
			})
		}, req)

		entry := findRequestLog(t, recorded)
		keys := make(map[string]bool)
		for _, field := range entry.Context {
			keys[field.Key] = true
		}
		for _, want := range []string{"method", "path", "status", "latency", "client_ip", "user_agent", "body_size"} {
			assert.True(t, keys[want], "missing field %s", want)
		}
	})
}

func TestGinMiddleware_RequestIDPropagation(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	engine := gin.New()

	// Stand-in for the RequestID middleware that runs first.
	engine.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	engine.Use(GinMiddleware(zap.New(core)))

	var ctxRequestID string
	engine.GET("/expeditions", func(c *gin.Context) {
		ctxRequestID = GetRequestID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/expeditions", nil))

	// The ID reaches both the access log and the request context.
	assert.Equal(t, "req-42", ctxRequestID)

	entry := findRequestLog(t, recorded)
	found := false
	for _, field := range entry.Context {
		if field.Key == "request_id" {
			found = true
			assert.Equal(t, "req-42", field.String)
		}
	}
	assert.True(t, found, "request_id should be logged")
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	engine := gin.New()
	engine.Use(Recovery(zap.New(core)))
	engine.GET("/panic", func(c *gin.Context) {
		panic("lost the rudder")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	assert.NotPanics(t, func() {
		engine.ServeHTTP(w, req)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}
