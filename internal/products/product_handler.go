package products

import (
	"net/http"
	"strconv"
	"time"

	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repository *ProductRepository
}

func NewHandler(r *ProductRepository) *Handler {
	return &Handler{repository: r}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/products", h.CreateProduct)
	router.GET("/products", h.ListProducts)
	router.GET("/products/:id", h.GetProduct)
	router.PUT("/products/:id", h.UpdateProduct)
	router.DELETE("/products/:id", h.DeleteProduct)
}

type productRequest struct {
	Name         string  `json:"name" binding:"required"`
	SKU          string  `json:"sku" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
	SellingPrice float64 `json:"selling_price"`
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	product := models.Product{
		TenantID:     security.TenantID(c),
		Name:         req.Name,
		SKU:          req.SKU,
		Unit:         req.Unit,
		SellingPrice: req.SellingPrice,
		CreatedAt:    time.Now(),
	}

	if err := h.repository.Insert(&product); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.repository.List(security.TenantID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.repository.Get(security.TenantID(c), productID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	product := models.Product{
		ID:           productID,
		TenantID:     security.TenantID(c),
		Name:         req.Name,
		Unit:         req.Unit,
		SellingPrice: req.SellingPrice,
	}

	if err := h.repository.Update(&product); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.repository.SoftDelete(security.TenantID(c), productID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
