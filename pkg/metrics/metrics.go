// Package metrics 提供 Prometheus helper，包含 HTTP 与行情拉取指标
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/portfoliotracker/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 行情拉取计数
	QuoteLookupsTotal prometheus.Counter
	// 行情拉取失败计数
	QuoteLookupErrors prometheus.Counter
	// 行情缓存命中计数
	QuoteCacheHits prometheus.Counter

	// 每日收盘价入库计数
	DailyReturnsIngested prometheus.Counter

	registry *prometheus.Registry
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		QuoteLookupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: serviceName,
			Name:      "quote_lookups_total",
			Help:      "Total live quote lookups issued to the quote source",
		}),
		QuoteLookupErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: serviceName,
			Name:      "quote_lookup_errors_total",
			Help:      "Quote lookups that failed",
		}),
		QuoteCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: serviceName,
			Name:      "quote_cache_hits_total",
			Help:      "Quote lookups served from the price cache",
		}),
		DailyReturnsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: serviceName,
			Name:      "daily_returns_ingested_total",
			Help:      "Daily close rows written by the ingestion job",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.QuoteLookupsTotal,
		m.QuoteLookupErrors,
		m.QuoteCacheHits,
		m.DailyReturnsIngested,
	)
	return m
}

// GinMiddleware 记录 HTTP 请求指标
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			fmt.Sprintf("%d", c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.Observe(time.Since(start).Seconds())
	}
}

// Serve 启动独立的 /metrics HTTP 服务
func (m *Metrics) Serve(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(context.Background(), "metrics server stopped", "error", err)
		}
	}()
	return srv
}
