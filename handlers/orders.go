package handlers

import (
	"net/http"

	orderRepo "floreria/database/repository/order"
	"floreria/middleware"
	"floreria/models"
	"floreria/services/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderHandler serves the staff dashboard: listings, transitions, audit trail.
type OrderHandler struct {
	OrderSvc order.OrderService
	Logger   *zap.Logger
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orderSvc order.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{OrderSvc: orderSvc, Logger: logger}
}

// ListOrders returns orders filtered by optional status and pickup date.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := orderRepo.ListFilter{
		Status:     models.OrderStatus(c.Query("status")),
		PickupDate: c.Query("date"),
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized status filter"})
		return
	}

	orders, err := h.OrderSvc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns a single order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.OrderSvc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// TransitionOrder applies a staff-driven status change. Illegal moves come
// back as a typed no-op explanation, never a crash.
func (h *OrderHandler) TransitionOrder(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return
	}

	var input struct {
		Target models.OrderStatus `json:"target" binding:"required"`
		Reason string             `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	o, err := h.OrderSvc.Transition(c.Request.Context(), c.Param("id"), actor, input.Target, input.Reason)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.Logger.Info("order status changed",
		zap.String("orderId", o.ID),
		zap.String("status", string(o.Status)),
		zap.String("actor", actor.ID))
	c.JSON(http.StatusOK, o)
}

// CancelOrder is the customer-initiated exit, legal only before acceptance.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var input struct {
		ContactName string `json:"contactName"`
	}
	_ = c.ShouldBindJSON(&input)

	actor := models.ActorRef{ID: "customer", Name: input.ContactName, Role: "customer"}
	if actor.Name == "" {
		actor.Name = "customer"
	}

	o, err := h.OrderSvc.Cancel(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetHistory returns the order's append-only transition trail, oldest first.
func (h *OrderHandler) GetHistory(c *gin.Context) {
	entries, err := h.OrderSvc.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
