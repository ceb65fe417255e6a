package locations

import (
	"net/http"
	"strconv"

	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repository *LocationRepository
}

func NewHandler(r *LocationRepository) *Handler {
	return &Handler{repository: r}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/locations", h.CreateLocation)
	router.GET("/locations", h.ListLocations)
	router.GET("/locations/:id", h.GetLocation)
	router.PUT("/locations/:id", h.UpdateLocation)
	router.DELETE("/locations/:id", h.DeleteLocation)
}

type locationRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   *string `json:"address"`
	IsPrimary bool    `json:"is_primary"`
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	location := models.Location{
		TenantID:  security.TenantID(c),
		Name:      req.Name,
		Address:   req.Address,
		IsPrimary: req.IsPrimary,
	}

	if err := h.repository.Insert(&location); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, location)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.repository.List(security.TenantID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *Handler) GetLocation(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}

	location, err := h.repository.Get(security.TenantID(c), locationID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	location := models.Location{
		ID:        locationID,
		TenantID:  security.TenantID(c),
		Name:      req.Name,
		Address:   req.Address,
		IsPrimary: req.IsPrimary,
	}

	if err := h.repository.Update(&location); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}

	if err := h.repository.Delete(security.TenantID(c), locationID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}
