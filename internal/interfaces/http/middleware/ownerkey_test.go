package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corsair/backend/internal/infrastructure/crypto"
)

func setupOwnerKeyRouter() *gin.Engine {
	r := gin.New()
	r.Use(OwnerKey())
	r.GET("/test", func(c *gin.Context) {
		key := GetOwnerKey(c)
		c.JSON(http.StatusOK, gin.H{"key_len": len(key)})
	})
	return r
}

func TestOwnerKey_ValidKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	r := setupOwnerKeyRouter()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OwnerKeyHeader, crypto.EncodeKeyHex(key))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key_len":32`)
}

func TestOwnerKey_AbsentHeader(t *testing.T) {
	r := setupOwnerKeyRouter()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key_len":0`)
}

func TestOwnerKey_MalformedKey(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"not hex", "zzzz"},
		{"wrong length", "deadbeef"},
		{"empty after trim", "0x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupOwnerKeyRouter()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(OwnerKeyHeader, tt.header)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_OWNER_KEY")
		})
	}
}

func TestGetOwnerKey_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetOwnerKey(c))
}
