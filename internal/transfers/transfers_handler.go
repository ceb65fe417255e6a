package transfers

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
	router.POST("/transfers", h.CreateTransfer)
	router.GET("/transfers", h.ListTransfers)
	router.GET("/transfers/:id", h.GetTransfer)
	router.PATCH("/transfers/:id/start", h.StartTransfer)
	router.PATCH("/transfers/:id/complete", h.CompleteTransfer)
	router.PATCH("/transfers/:id/cancel", h.CancelTransfer)
	router.DELETE("/transfers/:id", h.DeleteTransfer)
}

type createTransferRequest struct {
	ProductID      int    `json:"product_id" binding:"required"`
	FromLocationID int    `json:"from_location_id" binding:"required"`
	ToLocationID   int    `json:"to_location_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
	Note           string `json:"note"`
}

func (h *Handler) CreateTransfer(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	transfer, err := h.service.Create(CreateTransferRequest{
		TenantID:       security.TenantID(c),
		ProductID:      req.ProductID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Note:           req.Note,
		Actor:          security.Actor(c),
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

func (h *Handler) ListTransfers(c *gin.Context) {
	status := models.TransferStatus(c.Query("status"))

	transfers, err := h.service.List(security.TenantID(c), status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, transfers)
}

func (h *Handler) GetTransfer(c *gin.Context) {
	transferID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer ID"})
		return
	}

	transfer, err := h.service.Get(security.TenantID(c), transferID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

func (h *Handler) StartTransfer(c *gin.Context) {
	transferID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer ID"})
		return
	}

	if err := h.service.Start(security.TenantID(c), transferID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer started"})
}

func (h *Handler) CompleteTransfer(c *gin.Context) {
	transferID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer ID"})
		return
	}

	transfer, err := h.service.Complete(security.TenantID(c), transferID, security.Actor(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

func (h *Handler) CancelTransfer(c *gin.Context) {
	transferID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer ID"})
		return
	}

	if err := h.service.Cancel(security.TenantID(c), transferID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer cancelled"})
}

func (h *Handler) DeleteTransfer(c *gin.Context) {
	transferID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer ID"})
		return
	}

	if err := h.service.Delete(security.TenantID(c), transferID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transfer deleted"})
}
