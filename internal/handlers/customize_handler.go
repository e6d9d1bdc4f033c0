package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wso2/customize-validation-api/internal/dao"
	"github.com/wso2/customize-validation-api/internal/models"
	"github.com/wso2/customize-validation-api/internal/service"
	"github.com/wso2/customize-validation-api/internal/settings"
	"github.com/wso2/customize-validation-api/internal/utils"
)

// CustomizeHandler handles customize save and setting HTTP requests
type CustomizeHandler struct {
	customizeService *service.CustomizeService
}

// NewCustomizeHandler creates a new customize handler instance
func NewCustomizeHandler(customizeService *service.CustomizeService) *CustomizeHandler {
	return &CustomizeHandler{
		customizeService: customizeService,
	}
}

// Save handles POST /customize/save.
// A blocked save answers 400 with {message, invalid_settings}; a committed save answers 200.
func (h *CustomizeHandler) Save(c *gin.Context) {
	pending, ok := h.readPending(c)
	if !ok {
		return
	}

	result, err := h.customizeService.Save(c.Request.Context(), &models.SaveRequest{
		Pending: pending,
		SavedBy: utils.GetUsernameFromContext(c),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSaveRequest) {
			utils.SendError(c, models.ErrCodeInvalidSaveRequest, "Invalid save request", err.Error())
			return
		}
		utils.SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeDatabaseError, "Failed to save settings", err.Error())
		return
	}

	if result.Blocked {
		c.JSON(http.StatusBadRequest, result.Response)
		return
	}
	utils.SendOKResponse(c, result.Response)
}

// Validate handles POST /customize/validate without persisting anything
func (h *CustomizeHandler) Validate(c *gin.Context) {
	pending, ok := h.readPending(c)
	if !ok {
		return
	}

	result, err := h.customizeService.Validate(c.Request.Context(), pending)
	if err != nil {
		utils.SendInternalServerError(c, "Failed to validate settings", err.Error())
		return
	}

	if result.Blocked {
		c.JSON(http.StatusBadRequest, result.Response)
		return
	}
	utils.SendOKResponse(c, models.ValidateResponse{
		Valid:   true,
		Message: service.AllValidReport,
	})
}

// ListSettings handles GET /customize/settings
func (h *CustomizeHandler) ListSettings(c *gin.Context) {
	list, err := h.customizeService.GetSettings(c.Request.Context())
	if err != nil {
		utils.SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeDatabaseError, "Failed to list settings", err.Error())
		return
	}
	utils.SendOKResponse(c, list)
}

// GetSetting handles GET /customize/settings/:settingId
func (h *CustomizeHandler) GetSetting(c *gin.Context) {
	settingID := c.Param("settingId")

	setting, err := h.customizeService.GetSetting(c.Request.Context(), settingID)
	if err != nil {
		if errors.Is(err, settings.ErrUnknownSetting) {
			utils.SendError(c, models.ErrCodeSettingNotFound, "Setting not found", settingID)
			return
		}
		utils.SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeDatabaseError, "Failed to get setting", err.Error())
		return
	}
	utils.SendOKResponse(c, setting)
}

// ListChangesets handles GET /customize/changesets
func (h *CustomizeHandler) ListChangesets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	changesets, err := h.customizeService.ListChangesets(c.Request.Context(), limit)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeDatabaseError, "Failed to list changesets", err.Error())
		return
	}
	utils.SendOKResponse(c, gin.H{"changesets": changesets, "total": len(changesets)})
}

// GetChangeset handles GET /customize/changesets/:changesetId
func (h *CustomizeHandler) GetChangeset(c *gin.Context) {
	changesetID := c.Param("changesetId")

	changeset, err := h.customizeService.GetChangeset(c.Request.Context(), changesetID)
	if err != nil {
		if errors.Is(err, dao.ErrChangesetNotFound) {
			utils.SendError(c, models.ErrCodeChangesetNotFound, "Changeset not found", changesetID)
			return
		}
		utils.SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeDatabaseError, "Failed to get changeset", err.Error())
		return
	}
	utils.SendOKResponse(c, changeset)
}

func (h *CustomizeHandler) readPending(c *gin.Context) (*models.PendingValues, bool) {
	body, err := c.GetRawData()
	if err != nil {
		utils.SendBadRequestError(c, "Failed to read request body", err.Error())
		return nil, false
	}

	pending, err := models.ParsePendingValues(body)
	if err != nil {
		utils.SendError(c, models.ErrCodeInvalidSaveRequest, "Invalid request body", err.Error())
		return nil, false
	}
	return pending, true
}
