package middleware

import (
	"crypto/subtle"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/response"
)

// InternalTokenAuth gates operator surfaces such as the metrics
// endpoint. Loopback clients pass without a token.
func InternalTokenAuth(token string) gin.HandlerFunc {
	expected := strings.TrimSpace(token)

	return func(c *gin.Context) {
		if isLoopbackClient(c.ClientIP()) {
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("X-Internal-Token"))
		if provided == "" {
			provided = strings.TrimSpace(c.Query("internal_token"))
		}

		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.Fail(c, 401, "unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isLoopbackClient(clientIP string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(clientIP))
	if err != nil {
		return false
	}
	return addr.IsLoopback()
}
