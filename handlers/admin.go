package handlers

import (
	"net/http"

	"floreria/models"
	"floreria/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office closure calendar and schedule config.
type AdminHandler struct {
	Blocks   scheduling.BlockService
	Schedule scheduling.ScheduleService
	Logger   *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(blocks scheduling.BlockService, schedule scheduling.ScheduleService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Blocks: blocks, Schedule: schedule, Logger: logger}
}

// AddBlock declares a full-day or partial closure.
func (h *AdminHandler) AddBlock(c *gin.Context) {
	var input struct {
		Date      string `json:"date" binding:"required"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	block, err := h.Blocks.AddBlock(c.Request.Context(), input.Date, input.StartTime, input.EndTime, input.Reason)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

// RemoveBlock hard-deletes a closure.
func (h *AdminHandler) RemoveBlock(c *gin.Context) {
	if err := h.Blocks.RemoveBlock(c.Request.Context(), c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListBlocks returns the closures between ?from= and ?to= for the calendar.
func (h *AdminHandler) ListBlocks(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}
	blocks, err := h.Blocks.ListRange(c.Request.Context(), from, to)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

// GetSchedule returns the current schedule configuration.
func (h *AdminHandler) GetSchedule(c *gin.Context) {
	cfg := h.Schedule.Current()
	c.JSON(http.StatusOK, gin.H{
		"openTime":            models.FormatMinute(cfg.OpenMinute),
		"closeTime":           models.FormatMinute(cfg.CloseMinute),
		"slotIntervalMinutes": cfg.SlotIntervalMinutes,
		"prepBufferMinutes":   cfg.PrepBufferMinutes,
		"capacityPerSlot":     cfg.CapacityPerSlot,
		"updatedAt":           cfg.UpdatedAt,
	})
}

// UpdateSchedule applies an admin edit; invariant violations are rejected
// before anything is persisted.
func (h *AdminHandler) UpdateSchedule(c *gin.Context) {
	var upd models.ScheduleConfigUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	cfg, err := h.Schedule.Update(c.Request.Context(), upd)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.Logger.Info("schedule config saved by admin")
	c.JSON(http.StatusOK, cfg)
}
