package ledger

import (
	"net/http"
	"strconv"

	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/inventory/events", h.ApplyEvent)
	router.GET("/inventory/events", h.ListEvents)
	router.GET("/inventory/levels", h.ListStockLevels)
	router.GET("/inventory/levels/low-stock", h.ListLowStock)
}

type applyEventRequest struct {
	ProductID     int                    `json:"product_id" binding:"required"`
	LocationID    int                    `json:"location_id" binding:"required"`
	Type          string                 `json:"type" binding:"required"`
	QuantityDelta int                    `json:"quantity_delta" binding:"required"`
	Reference     *models.EventReference `json:"reference"`
	Note          string                 `json:"note"`
}

// ApplyEvent is the surface the external workflows (purchase-order receiving,
// point-of-sale, manual adjustment) post stock movements through.
func (h *Handler) ApplyEvent(c *gin.Context) {
	var req applyEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	event, err := h.service.ApplyEvent(ApplyEventRequest{
		TenantID:      security.TenantID(c),
		ProductID:     req.ProductID,
		LocationID:    req.LocationID,
		Type:          models.EventType(req.Type),
		QuantityDelta: req.QuantityDelta,
		Reference:     req.Reference,
		Actor:         security.Actor(c),
		Note:          req.Note,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *Handler) ListEvents(c *gin.Context) {
	productID, _ := strconv.Atoi(c.Query("product_id"))
	if productID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "product_id query parameter is required"})
		return
	}
	locationID, _ := strconv.Atoi(c.Query("location_id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.service.ListEvents(security.TenantID(c), productID, locationID, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *Handler) ListStockLevels(c *gin.Context) {
	locationID, _ := strconv.Atoi(c.Query("location_id"))
	if locationID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "location_id query parameter is required"})
		return
	}

	levels, err := h.service.ListStockLevels(security.TenantID(c), locationID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, levels)
}

func (h *Handler) ListLowStock(c *gin.Context) {
	levels, err := h.service.ListLowStock(security.TenantID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, levels)
}
