package stocktakes

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
	router.POST("/stock-takes", h.CreateStockTake)
	router.GET("/stock-takes", h.ListStockTakes)
	router.GET("/stock-takes/:id", h.GetStockTake)
	router.PATCH("/stock-takes/:id/start", h.StartStockTake)
	router.PATCH("/stock-takes/:id/submit-review", h.SubmitForReview)
	router.PATCH("/stock-takes/:id/cancel", h.CancelStockTake)
	router.POST("/stock-takes/:id/counts", h.CountItem)
	router.PATCH("/stock-takes/:id/complete", h.CompleteStockTake)
	router.DELETE("/stock-takes/:id", h.DeleteStockTake)
}

type createStockTakeRequest struct {
	LocationID int    `json:"location_id" binding:"required"`
	Note       string `json:"note"`
}

func (h *Handler) CreateStockTake(c *gin.Context) {
	var req createStockTakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	stockTake, err := h.service.Create(CreateStockTakeRequest{
		TenantID:   security.TenantID(c),
		LocationID: req.LocationID,
		Note:       req.Note,
		Actor:      security.Actor(c),
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, stockTake)
}

func (h *Handler) ListStockTakes(c *gin.Context) {
	status := models.StockTakeStatus(c.Query("status"))

	stockTakes, err := h.service.List(security.TenantID(c), status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, stockTakes)
}

func (h *Handler) GetStockTake(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	stockTake, err := h.service.Get(security.TenantID(c), stockTakeID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, stockTake)
}

func (h *Handler) StartStockTake(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	if err := h.service.Start(security.TenantID(c), stockTakeID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock take started"})
}

func (h *Handler) SubmitForReview(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	if err := h.service.SubmitForReview(security.TenantID(c), stockTakeID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock take submitted for review"})
}

func (h *Handler) CancelStockTake(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	if err := h.service.Cancel(security.TenantID(c), stockTakeID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock take cancelled"})
}

type countItemRequest struct {
	ProductID       int  `json:"product_id" binding:"required"`
	CountedQuantity *int `json:"counted_quantity" binding:"required"`
}

func (h *Handler) CountItem(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	var req countItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.service.CountItem(CountItemRequest{
		TenantID:        security.TenantID(c),
		StockTakeID:     stockTakeID,
		ProductID:       req.ProductID,
		CountedQuantity: *req.CountedQuantity,
		Actor:           security.Actor(c),
	}); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Count recorded"})
}

func (h *Handler) CompleteStockTake(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	stockTake, err := h.service.Complete(security.TenantID(c), stockTakeID, security.Actor(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, stockTake)
}

func (h *Handler) DeleteStockTake(c *gin.Context) {
	stockTakeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid stock take ID"})
		return
	}

	if err := h.service.Delete(security.TenantID(c), stockTakeID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock take deleted"})
}
