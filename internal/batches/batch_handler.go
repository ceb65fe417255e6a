package batches

import (
	"net/http"
	"strconv"
	"time"

	"stockroom/pkg/apperrors"
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
	router.POST("/batches", h.ReceiveBatch)
	router.GET("/batches", h.ListBatches)
	router.GET("/batches/expiring", h.ListExpiring)
	router.GET("/batches/:id", h.GetBatch)
	router.PATCH("/batches/:id/reserve", h.ReserveBatch)
	router.PATCH("/batches/:id/release", h.ReleaseBatch)
	router.DELETE("/batches/:id", h.DeleteBatch)
}

type receiveBatchRequest struct {
	ProductID         int        `json:"product_id" binding:"required"`
	LocationID        int        `json:"location_id"`
	BatchNumber       string     `json:"batch_number" binding:"required"`
	Quantity          int        `json:"quantity" binding:"required"`
	ManufacturingDate *time.Time `json:"manufacturing_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	UnitCost          float64    `json:"unit_cost"`
	Note              string     `json:"note"`
}

func (h *Handler) ReceiveBatch(c *gin.Context) {
	var req receiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	batch, err := h.service.Receive(ReceiveBatchRequest{
		TenantID:          security.TenantID(c),
		ProductID:         req.ProductID,
		LocationID:        req.LocationID,
		BatchNumber:       req.BatchNumber,
		Quantity:          req.Quantity,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		UnitCost:          req.UnitCost,
		Note:              req.Note,
		Actor:             security.Actor(c),
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, batch)
}

func (h *Handler) ListBatches(c *gin.Context) {
	productID, _ := strconv.Atoi(c.Query("product_id"))
	if productID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "product_id query parameter is required"})
		return
	}

	batches, err := h.service.ListByProduct(security.TenantID(c), productID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, batches)
}

func (h *Handler) ListExpiring(c *gin.Context) {
	batches, err := h.service.ListExpiring(security.TenantID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, batches)
}

func (h *Handler) GetBatch(c *gin.Context) {
	batchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	batch, err := h.service.Get(security.TenantID(c), batchID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

type reservationRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *Handler) ReserveBatch(c *gin.Context) {
	batchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	batch, err := h.service.Reserve(security.TenantID(c), batchID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

func (h *Handler) ReleaseBatch(c *gin.Context) {
	batchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	batch, err := h.service.Release(security.TenantID(c), batchID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

func (h *Handler) DeleteBatch(c *gin.Context) {
	batchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	if err := h.service.Delete(security.TenantID(c), batchID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Batch deleted"})
}
