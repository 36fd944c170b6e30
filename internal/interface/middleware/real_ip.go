package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the real client IP into Gin context (key: "real_ip").
// Without trustProxy the socket peer address is used as is. Otherwise:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most)
// 3) fallback to c.ClientIP()
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !trustProxy {
			c.Set("real_ip", c.RemoteIP())
			c.Next()
			return
		}
		if ip := headerIP(c); ip != "" {
			c.Set("real_ip", ip)
			c.Next()
			return
		}
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

func headerIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
