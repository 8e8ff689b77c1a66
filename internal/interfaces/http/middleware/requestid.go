package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request with an identifier. A caller-supplied
// X-Request-ID header wins so IDs survive across service hops; otherwise
// a fresh UUID is issued. The ID is stored under both gin keys the rest
// of the stack reads ("request_id" for the access logger, the header
// name for handlers) and echoed back in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}
