package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/utils"
)

// BasicAuthMiddleware rejects requests without valid credentials and records the user name
func BasicAuthMiddleware(cfg config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !cfg.ValidateUser(username, password) {
			c.Header("WWW-Authenticate", `Basic realm="customize"`)
			utils.SendUnauthorizedError(c, "Invalid or missing credentials")
			c.Abort()
			return
		}
		c.Set(utils.GinUsernameKey, username)
		c.Request = c.Request.WithContext(utils.WithUsername(c.Request.Context(), username))
		c.Next()
	}
}
