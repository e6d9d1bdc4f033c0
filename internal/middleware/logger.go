package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/utils"
)

// RequestLogger logs one structured entry per request
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":         c.Request.Method,
			"path":           c.FullPath(),
			"status":         c.Writer.Status(),
			"duration":       time.Since(start),
			"client_ip":      c.ClientIP(),
			"correlation_id": utils.GetCorrelationIDFromContext(c),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("Request completed with errors")
			return
		}
		entry.Debug("Request completed")
	}
}
