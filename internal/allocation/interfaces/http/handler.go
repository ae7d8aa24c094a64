package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/portfoliotracker/internal/allocation/application"
	"github.com/wyfcoding/portfoliotracker/internal/allocation/domain"
	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
)

const dateLayout = "2006-01-02"

type AllocationHandler struct {
	service *application.AllocationService
}

func NewAllocationHandler(service *application.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

func (h *AllocationHandler) RegisterRoutes(r *gin.RouterGroup) {
	allocations := r.Group("/allocations")
	{
		allocations.POST("", h.Create)
		allocations.GET("", h.List)
		allocations.GET("/:id", h.Get)
		allocations.PUT("/:id", h.Update)
		allocations.DELETE("/:id", h.Delete)
	}
}

type createAllocationRequest struct {
	ClientID uint             `json:"client_id" binding:"required"`
	AssetID  uint             `json:"asset_id" binding:"required"`
	Quantity decimal.Decimal  `json:"quantity" binding:"required"`
	BuyPrice *decimal.Decimal `json:"buy_price"`
	BuyDate  *string          `json:"buy_date"`
}

func (h *AllocationHandler) Create(c *gin.Context) {
	var req createAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := application.CreateParams{
		ClientID: req.ClientID,
		AssetID:  req.AssetID,
		Quantity: req.Quantity,
		BuyPrice: req.BuyPrice,
	}
	if req.BuyDate != nil {
		d, err := time.Parse(dateLayout, *req.BuyDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "buy_date must be YYYY-MM-DD"})
			return
		}
		params.BuyDate = &d
	}

	allocation, err := h.service.Create(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, assetdomain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		case errors.Is(err, domain.ErrInvalidAllocation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, allocation)
}

func (h *AllocationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid allocation id"})
		return
	}

	allocation, err := h.service.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, allocation)
}

func (h *AllocationHandler) List(c *gin.Context) {
	filter := domain.ListFilter{}

	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_active"})
			return
		}
		filter.IsActive = &active
	}
	if v := c.Query("client_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientID := uint(id)
		filter.ClientID = &clientID
	}
	if v := c.Query("asset_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset_id"})
			return
		}
		assetID := uint(id)
		filter.AssetID = &assetID
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	filter.Offset = (page - 1) * limit
	filter.Limit = limit

	allocations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, allocations)
}

type updateAllocationRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
	BuyPrice *decimal.Decimal `json:"buy_price"`
	BuyDate  *string          `json:"buy_date"`
	IsActive *bool            `json:"is_active"`
}

func (h *AllocationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid allocation id"})
		return
	}

	var req updateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := application.UpdateParams{
		Quantity: req.Quantity,
		BuyPrice: req.BuyPrice,
		IsActive: req.IsActive,
	}
	if req.BuyDate != nil {
		d, err := time.Parse(dateLayout, *req.BuyDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "buy_date must be YYYY-MM-DD"})
			return
		}
		params.BuyDate = &d
	}

	allocation, err := h.service.Update(c.Request.Context(), uint(id), params)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
		case errors.Is(err, domain.ErrInvalidAllocation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, allocation)
}

func (h *AllocationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid allocation id"})
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "allocation marked as inactive"})
}
