package serials

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
	router.POST("/serials", h.CreateSerial)
	router.POST("/serials/bulk", h.CreateSerialsBulk)
	router.GET("/serials", h.ListSerials)
	router.GET("/serials/:id", h.GetSerial)
	router.PATCH("/serials/:id/status", h.UpdateSerialStatus)
	router.DELETE("/serials/:id", h.DeleteSerial)
}

type createSerialRequest struct {
	ProductID      int    `json:"product_id" binding:"required"`
	BatchID        *int   `json:"batch_id"`
	StockLevelID   *int   `json:"stock_level_id"`
	Serial         string `json:"serial" binding:"required"`
	WarrantyMonths int    `json:"warranty_months"`
}

func (req createSerialRequest) toServiceRequest(tenantID int) CreateSerialRequest {
	return CreateSerialRequest{
		TenantID:       tenantID,
		ProductID:      req.ProductID,
		BatchID:        req.BatchID,
		StockLevelID:   req.StockLevelID,
		Serial:         req.Serial,
		WarrantyMonths: req.WarrantyMonths,
	}
}

func (h *Handler) CreateSerial(c *gin.Context) {
	var req createSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	serial, err := h.service.Create(req.toServiceRequest(security.TenantID(c)))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, serial)
}

func (h *Handler) CreateSerialsBulk(c *gin.Context) {
	var reqs []createSerialRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	tenantID := security.TenantID(c)
	serviceReqs := make([]CreateSerialRequest, 0, len(reqs))
	for _, req := range reqs {
		serviceReqs = append(serviceReqs, req.toServiceRequest(tenantID))
	}

	serials, err := h.service.CreateBulk(serviceReqs)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, serials)
}

func (h *Handler) ListSerials(c *gin.Context) {
	productID, _ := strconv.Atoi(c.Query("product_id"))
	if productID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "product_id query parameter is required"})
		return
	}
	status := models.SerialStatus(c.Query("status"))

	serials, err := h.service.ListByProduct(security.TenantID(c), productID, status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serials)
}

func (h *Handler) GetSerial(c *gin.Context) {
	serialID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid serial number ID"})
		return
	}

	serial, err := h.service.Get(security.TenantID(c), serialID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serial)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateSerialStatus(c *gin.Context) {
	serialID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid serial number ID"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	serial, err := h.service.UpdateStatus(security.TenantID(c), serialID, models.SerialStatus(req.Status))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serial)
}

func (h *Handler) DeleteSerial(c *gin.Context) {
	serialID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid serial number ID"})
		return
	}

	if err := h.service.Delete(security.TenantID(c), serialID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Serial number deleted"})
}
