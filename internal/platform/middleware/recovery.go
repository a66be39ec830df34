package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// MsgInternalServerError is the body sent when a panic value formats to nothing.
const MsgInternalServerError = "Internal server error"

// Recovery returns a middleware that turns panics into a 500 JSON error
// carrying the panic message.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			"error", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
			"stack", string(debug.Stack()),
		)
		msg := fmt.Sprint(recovered)
		if msg == "" {
			msg = MsgInternalServerError
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
	})
}
