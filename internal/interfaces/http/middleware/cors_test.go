package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/expeditions", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func corsGet(router *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/expeditions", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins, "origins must be opt-in")
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "DELETE")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.AllowHeaders, "X-Owner-Key")
	assert.Contains(t, cfg.ExposeHeaders, "X-Request-ID")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("whitelisted origin gets headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins:     []string{"http://quartermaster.local"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		})

		w := corsGet(router, "http://quartermaster.local")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://quartermaster.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("each whitelisted origin is echoed back", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"http://a.local", "http://b.local"},
		})

		for _, origin := range []string{"http://a.local", "http://b.local"} {
			w := corsGet(router, origin)
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{AllowOrigins: []string{"http://a.local"}})

		w := corsGet(router, "http://rogue.local")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist blocks every cross-origin caller", func(t *testing.T) {
		router := corsRouter(CORSConfig{AllowOrigins: []string{}})

		w := corsGet(router, "http://anything.local")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("same-origin request passes without headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{AllowOrigins: []string{"http://a.local"}})

		w := corsGet(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowCredentials: true,
		})

		w := corsGet(router, "http://anything.local")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"),
			"credentials must never pair with a wildcard origin")
	})

	t.Run("max age is emitted in seconds", func(t *testing.T) {
		tests := []struct {
			maxAge   time.Duration
			expected string
		}{
			{time.Minute, "60"},
			{time.Hour, "3600"},
			{12 * time.Hour, "43200"},
		}
		for _, tt := range tests {
			router := corsRouter(CORSConfig{
				AllowOrigins: []string{"http://a.local"},
				MaxAge:       tt.maxAge,
			})
			w := corsGet(router, "http://a.local")
			assert.Equal(t, tt.expected, w.Header().Get("Access-Control-Max-Age"))
		}
	})

	t.Run("expose headers are joined", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins:  []string{"http://a.local"},
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		})

		w := corsGet(router, "http://a.local")
		assert.Equal(t, "X-Request-ID, X-RateLimit-Remaining", w.Header().Get("Access-Control-Expose-Headers"))
	})
}

func TestCORSPreflight(t *testing.T) {
	preflight := func(router *gin.Engine, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/expeditions", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("allowed origin gets 204 with headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{
			AllowOrigins: []string{"http://quartermaster.local"},
			AllowMethods: []string{"GET", "POST", "PUT"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		})

		w := preflight(router, "http://quartermaster.local")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://quartermaster.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("disallowed origin still gets 204 without headers", func(t *testing.T) {
		router := corsRouter(CORSConfig{AllowOrigins: []string{"http://a.local"}})

		w := preflight(router, "http://rogue.local")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist still answers 204", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS())
		router.GET("/expeditions", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := preflight(router, "http://anything.local")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
