package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(maxBytes int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(maxBytes))
		router.POST("/notes", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("small body passes", func(t *testing.T) {
		router := newRouter(1024)

		req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"text":"rum"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared oversize body is rejected before reading", func(t *testing.T) {
		router := newRouter(100)

		req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(strings.Repeat("x", 200)))
		req.ContentLength = 200
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("bodyless request passes", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(10))
		router.GET("/notes", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("chunked body is capped while streaming", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(50))
		router.POST("/notes", func(c *gin.Context) {
			buf := make([]byte, 200)
			if _, err := c.Request.Body.Read(buf); err != nil {
				c.String(http.StatusBadRequest, "body too large")
				return
			}
			c.String(http.StatusOK, "ok")
		})

		// ContentLength -1 mimics a chunked transfer, so the up-front
		// check cannot fire and MaxBytesReader has to catch it.
		req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
