package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stratuminvest/stratum-backend/internal/models"
	"github.com/stratuminvest/stratum-backend/internal/service"
)

type AdminHandler struct {
	settingsService   service.SettingsService
	settlementService service.SettlementService
	logService        service.LogService
}

func NewAdminHandler(settingsService service.SettingsService, settlementService service.SettlementService, logService service.LogService) *AdminHandler {
	return &AdminHandler{
		settingsService:   settingsService,
		settlementService: settlementService,
		logService:        logService,
	}
}

// @Summary Get platform settings
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Settings
// @Router /admin/settings [get]
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// @Summary Update platform settings
// @Description Replaces the global settings document (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body models.Settings true "Settings"
// @Success 200 {object} map[string]string "Settings updated"
// @Failure 400 {object} map[string]string "Invalid settings"
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := h.settingsService.UpdateSettings(&settings); err != nil {
		abortWithError(c, err)
		return
	}

	adminID, _ := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err := h.logService.LogAction(adminID, "UpdateSettings", "Settings updated", c.ClientIP(), nil); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "Settings updated"})
}

// @Summary Run the daily settlement
// @Description Credits daily profit for eligible investments and completes expired ones (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SettlementSummary
// @Router /admin/settlement/run [post]
func (h *AdminHandler) RunSettlement(c *gin.Context) {
	summary, err := h.settlementService.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settlement run failed"})
		return
	}

	adminID, _ := primitive.ObjectIDFromHex(c.GetString("user_id"))
	metadata := map[string]interface{}{
		"processed": summary.Processed,
		"completed": summary.Completed,
		"skipped":   summary.Skipped,
	}
	if err := h.logService.LogAction(adminID, "RunSettlement", "Settlement triggered", c.ClientIP(), metadata); err != nil {
		log.Printf("error: %v", err)
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary List audit logs
// @Description Retrieves audit log entries, optionally for a single user (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Filter by user ID"
// @Success 200 {array} models.LogEntry
// @Router /admin/logs [get]
func (h *AdminHandler) GetLogs(c *gin.Context) {
	page, limit := pagination(c)

	var (
		logs []*models.LogEntry
		err  error
	)
	if userID := c.Query("user_id"); userID != "" {
		logs, err = h.logService.GetLogsByUserID(userID, int(page), int(limit))
	} else {
		logs, err = h.logService.GetAllLogs(int(page), int(limit))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
