package middleware

import (
	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// ClientIP stores the caller address used by audit entries. It is gin's ClientIP, so
// X-Forwarded-For and X-Real-Ip only count when the peer is one of the engine's
// trusted proxies (TRUSTED_PROXIES).
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, c.ClientIP())
		c.Next()
	}
}

// GetIPFromContext returns the address stored by ClientIP.
func GetIPFromContext(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return c.ClientIP()
}
