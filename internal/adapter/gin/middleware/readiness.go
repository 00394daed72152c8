package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MsgNotReady is returned while the database pool is still being established
const MsgNotReady = "service temporarily unavailable (database not ready)"

// ReadinessChecker reports whether the service can serve traffic
type ReadinessChecker interface {
	Ready() bool
}

// Readiness rejects requests with 503 until checker reports ready.
func Readiness(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checker.Ready() {
			c.Header("Retry-After", "5")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"message": MsgNotReady,
			})
			return
		}
		c.Next()
	}
}
