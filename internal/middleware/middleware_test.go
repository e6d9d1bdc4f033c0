package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCorrelationIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, utils.CorrelationIDFromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(utils.CorrelationIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(utils.CorrelationIDHeader))
	assert.Equal(t, w.Header().Get(utils.CorrelationIDHeader), w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://admin.example.com"},
	}))
	router.POST("/save", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/save", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/save", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBasicAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(BasicAuthMiddleware(config.SecurityConfig{
		BasicAuth: config.BasicAuthConfig{
			Enabled: true,
			Users:   []config.BasicAuthUser{{Username: "admin", Password: "secret"}},
		},
	}))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetUsernameFromContext(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("admin", "wrong")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("admin", "secret")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
