package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wso2/customize-validation-api/internal/models"
)

// SendSuccessResponse sends a successful JSON response
func SendSuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendError sends an error response with the status mapped from its code
func SendError(c *gin.Context, errCode, message, details string) {
	SendErrorResponse(c, models.HTTPStatusForErrorCode(errCode), errCode, message, details)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendUnauthorizedError sends a 401 Unauthorized error
func SendUnauthorizedError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, message, "")
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// GetCorrelationIDFromContext extracts the correlation ID from the gin context
func GetCorrelationIDFromContext(c *gin.Context) string {
	if id := c.GetString(GinCorrelationIDKey); id != "" {
		return id
	}
	return CorrelationIDFromContext(c.Request.Context())
}

// GetUsernameFromContext extracts the authenticated user name, or "anonymous"
func GetUsernameFromContext(c *gin.Context) string {
	if name := c.GetString(GinUsernameKey); name != "" {
		return name
	}
	return "anonymous"
}
