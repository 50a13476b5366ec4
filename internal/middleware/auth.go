package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/auth"
	"ecorueda/internal/domain"
)

// Context keys populated by the auth middleware.
const (
	ContextUserID = "userID"
	ContextRole   = "userRole"
)

// AuthRequired returns middleware that rejects requests without a valid
// Bearer token and stores the caller's identity in the gin context.
func AuthRequired(tokens *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "missing bearer token",
				"timestamp": nowISO(),
			})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   err.Error(),
				"timestamp": nowISO(),
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminOnly returns middleware that rejects non-admin callers. It must run
// after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		if role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "admin access required",
				"timestamp": nowISO(),
			})
			return
		}
		c.Next()
	}
}
