package api

import (
	"errors"                        // Error matching
	"io"                            // Empty body detection
	"net/http"                      // HTTP status codes
	"staff_records/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// statusFor maps an error kind to its HTTP status. NotFound shares 400 with
// validation failures; existing clients depend on that.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindValidation, domain.KindNotFound:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the client-visible message of err, or a generic 500 for unexpected failures
func respondError(c *gin.Context, err error) {
	if e, ok := domain.AsError(err); ok {
		c.JSON(statusFor(e.Kind), gin.H{"message": e.Message})
		return
	}
	// Log the error with context
	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method, // HTTP method
		"path":   c.FullPath(),     // Route
		"error":  err.Error(),      // Error message
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// bindJSON decodes the request body, answering 400 when it is not valid JSON
// for the target type. An empty body leaves dest zero so the manager reports
// the missing fields.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return false
	}
	return true
}
