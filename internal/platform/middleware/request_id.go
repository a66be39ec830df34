// Package middleware provides the gin middleware shared by every route.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the request ID on requests and responses.
	HeaderRequestID = "X-Request-Id"
	// ContextRequestID is the gin context key holding the request ID.
	ContextRequestID = "requestID"
)

// maxRequestIDLen caps client-supplied IDs so they cannot bloat logs.
const maxRequestIDLen = 128

// RequestID returns a middleware that propagates the client's X-Request-Id
// or generates a new UUID when none (or an oversized one) is sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request ID stored by RequestID, or "" when absent.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
