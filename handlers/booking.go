package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookline/database/repository"
	"bookline/models"
	"bookline/services/booking"
)

// BookingHandler exposes the direct booking entry points that bypass chat.
type BookingHandler struct {
	Svc    booking.Service
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

type statusUpdateInput struct {
	Status models.BookingStatus `json:"status" binding:"required,oneof=confirmed cancelled"`
}

type validationErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validationErrorList(errs repository.ValidationErrors) []validationErrorItem {
	items := make([]validationErrorItem, 0, len(errs))
	for _, ve := range errs {
		items = append(items, validationErrorItem{Field: ve.Field, Message: ve.Message})
	}
	return items
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := h.Svc.Create(c.Request.Context(), input)
	if err != nil {
		var validationErrs repository.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": validationErrorList(validationErrs)})
			return
		}
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
			return
		}
		h.Logger.Error("failed to create booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": created})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")

	found, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
			return
		}
		h.Logger.Error("failed to fetch booking", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": found})
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	id := c.Param("id")
	var input statusUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be confirmed or cancelled"})
		return
	}

	updated, err := h.Svc.SetStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
			return
		}
		var validationErr *repository.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
			return
		}
		h.Logger.Error("failed to update booking status", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": updated})
}
