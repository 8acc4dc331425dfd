package middleware

import (
	"net/http"                     // HTTP status codes
	"strings"                      // String manipulation
	"staff_records/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by the auth middlewares
const (
	AccountIDKey = "accountID" // Authenticated account ID
	RolesKey     = "roles"     // Roles of the authenticated account
)

// JWTAuthMiddleware validates bearer tokens issued by the identity provider and attaches the principal
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		c.Set(AccountIDKey, claims.AccountID) // Store account ID in context
		c.Set(RolesKey, claims.Roles)         // Store token roles in context
		c.Next()                              // Proceed to the next handler
	}
}
