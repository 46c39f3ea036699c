package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the correlation ID
const RequestIDKey = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with a correlation ID so one
// generation run can be traced across the access log, the service logs
// and the client. An incoming X-Request-ID is honored; otherwise a short
// ID is issued.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			// 8 hex chars are plenty to correlate within a log window
			requestID = uuid.New().String()[:8]
		}

		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request's correlation ID, or "" outside the
// middleware chain
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}
