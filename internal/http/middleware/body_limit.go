package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iapss/iapss-backend/internal/http/response"
)

// BodyLimit caps request bodies at limit bytes. A declared Content-Length above the cap is
// rejected up front; otherwise reads past the cap fail with *http.MaxBytesError, which
// the handlers' JSON binding turns into a 413. limit <= 0 disables the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			response.AbortError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("request body exceeds %d bytes", limit))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
