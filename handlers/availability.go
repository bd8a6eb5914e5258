package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookline/config"
	"bookline/services/availability"
)

// AvailabilityHandler serves the widget's slot picker.
type AvailabilityHandler struct {
	Svc      availability.Service
	Logger   *zap.Logger
	Location *time.Location
}

// NewAvailabilityHandler resolves the configured timezone once; a bad
// DEFAULT_TIMEZONE fails startup rather than being papered over per request.
func NewAvailabilityHandler(svc availability.Service, logger *zap.Logger) (*AvailabilityHandler, error) {
	loc, err := time.LoadLocation(config.AppConfig.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", config.AppConfig.DefaultTimezone, err)
	}
	return &AvailabilityHandler{Svc: svc, Logger: logger, Location: loc}, nil
}

// GetSlots handles GET /api/availability?date=YYYY-MM-DD&duration=30.
func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	day, err := time.ParseInLocation("2006-01-02", c.Query("date"), h.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	duration := config.AppConfig.DefaultDurationMin
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a positive number of minutes"})
			return
		}
	}

	slots, err := h.Svc.GetSlots(c.Request.Context(), day, duration)
	if err != nil {
		h.Logger.Error("failed to compute slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "duration": duration, "slots": slots})
}
