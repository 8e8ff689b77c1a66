package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corsair/backend/internal/infrastructure/crypto"
	"github.com/corsair/backend/internal/interfaces/http/dto"
)

// OwnerKeyHeader carries the hex-encoded expedition owner key. The key is
// never persisted server-side; it is used for the request and discarded.
const OwnerKeyHeader = "X-Owner-Key"

// OwnerKeyContextKey is the gin context key for the parsed owner key
const OwnerKeyContextKey = "owner_key"

// OwnerKey parses the X-Owner-Key header when present and stores the raw
// key bytes in the request context. A malformed header is rejected early so
// handlers never see partial key material.
func OwnerKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(OwnerKeyHeader)
		if header == "" {
			c.Next()
			return
		}

		key, err := crypto.ParseKeyHex(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeInvalidOwnerKey,
				"X-Owner-Key must be a hex-encoded 256-bit key",
			))
			return
		}

		c.Set(OwnerKeyContextKey, key)
		c.Next()
	}
}

// GetOwnerKey retrieves the parsed owner key from gin.Context.
// Returns nil when the request carried no key.
func GetOwnerKey(c *gin.Context) []byte {
	if v, exists := c.Get(OwnerKeyContextKey); exists {
		if key, ok := v.([]byte); ok {
			return key
		}
	}
	return nil
}
