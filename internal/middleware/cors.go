package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware returns middleware that allows cross-origin requests from
// the map client.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
