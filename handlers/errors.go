package handlers

import (
	"net/http"

	orderRepo "floreria/database/repository/order"
	"floreria/services/order"
	"floreria/services/scheduling"
	"floreria/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeDomainError maps typed domain results onto HTTP responses. Admission
// and transition rejections are results shown to the user; anything untyped is
// a generic transient failure and safe to retry.
func writeDomainError(c *gin.Context, err error) {
	if ae, ok := scheduling.AsAdmissionError(err); ok {
		status := http.StatusUnprocessableEntity
		if ae.Code == scheduling.CodeSlotFull || ae.Code == scheduling.CodeAdmissionConflict {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error":     ae.Message,
			"code":      ae.Code,
			"retryable": ae.Retryable(),
		})
		return
	}
	if te, ok := order.AsTransitionError(err); ok {
		status := http.StatusConflict
		if te.Code == order.CodeReasonRequired || te.Code == order.CodeUnknownStatus {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": te.Message, "code": te.Code})
		return
	}

	switch e := err.(type) {
	case *scheduling.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error(), "field": e.Field})
		return
	case *scheduling.ConfigError:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.Error(), "code": "configInvariant", "field": e.Field})
		return
	}

	switch err {
	case orderRepo.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	case scheduling.ErrBlockNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "block not found"})
		return
	}

	utils.GetLogger().Error("request failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "A transient error occurred. Please try again.")
}
