package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader is the credential header checked on every non-health request
const APIKeyHeader = "X-API-Key"

// RequireAPIKey returns a middleware that rejects requests whose X-API-Key
// header does not exactly match the configured secret. Health routes are
// never placed behind this middleware so orchestrator probes keep working
// even when the key is misconfigured.
func RequireAPIKey(apiKey string) gin.HandlerFunc {
	secret := []byte(apiKey)

	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			unauthorized(c, "missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), secret) != 1 {
			unauthorized(c, "invalid API key")
			return
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
	c.Abort()
}
