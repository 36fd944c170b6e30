package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/pkg/response"
)

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"route":      route,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString(response.RequestIDKey),
			"ip":         ipFromCtx(c),
		}
		if id, ok := IdentityFrom(c); ok {
			fields["user_id"] = id.ID
		}
		logger.WithFields(fields).Info("http_request")
	}
}
