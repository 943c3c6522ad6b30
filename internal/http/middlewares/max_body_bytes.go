package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies at limit. A declared Content-Length over
// the cap is refused up front; chunked bodies are cut off while reading and
// surface as *http.MaxBytesError from the decoder.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	message := fmt.Sprintf("Request body exceeds %d bytes", limit)

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abortWithError(c, http.StatusRequestEntityTooLarge, "payload_too_large", message)
			return
		}

		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
