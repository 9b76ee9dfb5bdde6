package handlers

import "github.com/gin-gonic/gin"

// RequestIDKey is the Gin context key holding the per-request id set by the
// router middleware.
const RequestIDKey = "requestId"

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
