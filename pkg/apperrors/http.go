package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond maps a taxonomy error onto the HTTP status the API promises:
// 400 validation, 404 not found, 409 conflict / insufficient stock / invalid
// transition, 500 otherwise. Internal errors never leak their message.
func Respond(c *gin.Context, err error) {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		conflict   *ConflictError
		stock      *InsufficientStockError
		transition *InvalidStateTransitionError
	)

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &stock):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     stock.Error(),
			"available": stock.Available,
			"requested": stock.Requested,
		})
	case errors.As(err, &transition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": transition.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
