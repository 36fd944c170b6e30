package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/helpers"
	"github.com/oksasatya/user-management-api/pkg/response"
)

// ErrorHandler renders the last error pushed with c.Error as the standard
// envelope. Internal errors are logged with their cause; the client only sees
// the generic message.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperror.As(c.Errors.Last().Err)
		if appErr.Kind == apperror.KindInternal {
			helpers.LogError(logger, "request failed", appErr.Err, logrus.Fields{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(response.RequestIDKey),
			})
		}
		response.Error[any](c, appErr.Kind.Status(), appErr.Message, appErr.Details)
	}
}

// Recovery is a gin.RecoveryFunc rendering panics as a 500 envelope.
func Recovery(logger *logrus.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		helpers.LogError(logger, "panic recovered", nil, logrus.Fields{
			"panic":      recovered,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(response.RequestIDKey),
		})
		response.Abort(c, http.StatusInternalServerError, "Internal server error")
	}
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "Route not found", nil)
	}
}
