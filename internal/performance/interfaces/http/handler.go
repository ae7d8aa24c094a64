package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	"github.com/wyfcoding/portfoliotracker/internal/performance/application"
	"github.com/wyfcoding/portfoliotracker/internal/performance/domain"
)

type PerformanceHandler struct {
	service *application.PerformanceService
}

func NewPerformanceHandler(service *application.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{service: service}
}

func (h *PerformanceHandler) RegisterRoutes(r *gin.RouterGroup) {
	perf := r.Group("/performance")
	{
		perf.GET("/clients/:id", h.ClientPerformance)
		perf.GET("/clients/:id/captured", h.CapturedByPeriod)
		perf.GET("/clients/:id/export", h.Export)
		perf.GET("/assets/:id/metrics", h.AssetMetrics)
	}
}

func (h *PerformanceHandler) ClientPerformance(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	records, err := h.service.ClientPerformance(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *PerformanceHandler) CapturedByPeriod(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	period := domain.Period(c.Query("period"))
	year, err := strconv.Atoi(c.DefaultQuery("year", "0"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a positive integer"})
		return
	}
	month := 0
	if v := c.Query("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer"})
			return
		}
	}

	result, err := h.service.CapturedByPeriod(c.Request.Context(), clientID, period, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) || errors.Is(err, domain.ErrMonthRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PerformanceHandler) Export(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	if format := c.DefaultQuery("format", "csv"); format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=performance_client_%d.csv", clientID))
	if err := h.service.ExportCSV(c.Request.Context(), clientID, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}

// AssetMetrics 对单一资产按给定买入参数试算绩效
func (h *PerformanceHandler) AssetMetrics(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
		return
	}

	buyPrice, err := decimal.NewFromString(c.Query("buy_price"))
	if err != nil || !buyPrice.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buy_price must be a positive number"})
		return
	}
	quantity, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil || !quantity.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive number"})
		return
	}

	var buyDate *time.Time
	if v := c.Query("buy_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "buy_date must be YYYY-MM-DD"})
			return
		}
		buyDate = &d
	}

	record, err := h.service.AssetMetrics(c.Request.Context(), uint(id), buyPrice, quantity, buyDate)
	if err != nil {
		if errors.Is(err, assetdomain.ErrNotFound) || errors.Is(err, assetdomain.ErrNoPriceData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func parseClientID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return 0, false
	}
	return uint(id), true
}
