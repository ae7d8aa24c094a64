package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/portfoliotracker/internal/marketdata/application"
	"github.com/wyfcoding/portfoliotracker/pkg/middleware"
)

const dateLayout = "2006-01-02"

type MarketDataHandler struct {
	service *application.IngestService
}

func NewMarketDataHandler(service *application.IngestService) *MarketDataHandler {
	return &MarketDataHandler{service: service}
}

// RegisterRoutes 挂载行情路由；采集触发仅限 admin
func (h *MarketDataHandler) RegisterRoutes(r *gin.RouterGroup) {
	md := r.Group("/marketdata")
	{
		md.GET("/assets/:id/daily", h.History)

		admin := md.Group("", middleware.RequireRole("admin"))
		admin.POST("/ingest", h.Ingest)
		admin.POST("/backfill", h.Backfill)
	}
}

func (h *MarketDataHandler) History(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
		return
	}

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		to = &d
	}

	rows, err := h.service.History(c.Request.Context(), uint(id), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *MarketDataHandler) Ingest(c *gin.Context) {
	stored, err := h.service.IngestYesterday(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": stored})
}

type backfillRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

func (h *MarketDataHandler) Backfill(c *gin.Context) {
	var req backfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return
	}

	stored, err := h.service.Backfill(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": stored})
}
