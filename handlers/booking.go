package handlers

import (
	"net/http"

	"floreria/models"
	"floreria/services/order"
	"floreria/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the customer-facing booking flow.
type BookingHandler struct {
	Availability scheduling.AvailabilityService
	OrderSvc     order.OrderService
	Logger       *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(avail scheduling.AvailabilityService, orderSvc order.OrderService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Availability: avail, OrderSvc: orderSvc, Logger: logger}
}

// GetSlots returns the bookable pickup times for a date. A day where the prep
// buffer pushed past closing time comes back with closedForToday set, so the
// UI can say "no more pickups today" instead of showing an empty picker.
func (h *BookingHandler) GetSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	slots, err := h.Availability.ListBookableSlots(c.Request.Context(), date)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// CheckSlot answers whether one (date, time) is bookable right now.
func (h *BookingHandler) CheckSlot(c *gin.Context) {
	date := c.Query("date")
	clock := c.Query("time")
	if date == "" || clock == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and time query parameters are required"})
		return
	}
	minute, err := models.ParseClock(clock)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time, expected HH:MM"})
		return
	}

	if err := h.Availability.IsBookable(c.Request.Context(), date, minute); err != nil {
		if ae, ok := scheduling.AsAdmissionError(err); ok {
			c.JSON(http.StatusOK, gin.H{"ok": false, "reason": ae.Code})
			return
		}
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateOrder submits a booking. Admission is re-validated inside the same
// transaction as the order insert; a stale slot picker cannot overbook.
func (h *BookingHandler) CreateOrder(c *gin.Context) {
	var input models.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	o, err := h.OrderSvc.CreateOrder(c.Request.Context(), input)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.Logger.Info("booking confirmed", zap.String("orderId", o.ID))
	c.JSON(http.StatusCreated, o)
}
