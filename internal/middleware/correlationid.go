package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wso2/customize-validation-api/internal/utils"
)

// CorrelationIDMiddleware reuses an incoming correlation ID or generates one and
// exposes it on the gin context, the request context and the response header.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(utils.GinCorrelationIDKey, correlationID)
		c.Request = c.Request.WithContext(utils.WithCorrelationID(c.Request.Context(), correlationID))
		c.Header(utils.CorrelationIDHeader, correlationID)
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	headers := []string{utils.CorrelationIDHeader, "X-Request-ID", "X-Trace-ID"}
	for _, header := range headers {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}
