package middleware

import (
	"net/http"
	"strings"

	"bookline/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthMiddleware guards the status-update endpoints. The presented
// token is checked against the bcrypt hash from configuration.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		hash := config.AppConfig.AdminTokenHash
		if hash == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin access not configured"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tokenString)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
