package middleware

import (
	"errors"                       // Error matching
	"net/http"                     // HTTP status codes
	"slices"                       // Role lookup
	"staff_records/internal/store" // Record store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// ActiveAccountMiddleware reloads the caller's account from the store on each
// request, rejects unknown or deactivated accounts and replaces the token
// roles with the stored ones
func ActiveAccountMiddleware(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetString(AccountIDKey) // Set by JWTAuthMiddleware
		// Check if the principal is present
		if accountID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		acc, err := s.Accounts().FindByID(c.Request.Context(), accountID) // Fetch caller from store
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logrus.WithFields(logrus.Fields{
					"account_id": accountID,   // Caller ID
					"error":      err.Error(), // Error message
				}).Error("Failed to load caller account")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account not found"})
			return
		}
		// Deactivated accounts keep valid tokens until expiry, refuse them here
		if !acc.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account is inactive"})
			return
		}
		c.Set(RolesKey, acc.Roles) // Stored roles win over token roles
		c.Next()
	}
}

// RequireRoles lets the request through only if the caller holds one of roles
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		have, _ := c.Get(RolesKey)
		held, _ := have.([]string)
		for _, r := range held {
			if slices.Contains(roles, r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient role"})
	}
}
