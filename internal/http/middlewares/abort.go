package middlewares

import "github.com/gin-gonic/gin"

// abortWithError ends the chain with the same error envelope the handlers
// write, including the request id when RequestID ran first.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
