package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/logger"
	"github.com/wyfcoding/portfoliotracker/pkg/metrics"
)

// AssetService 资产目录与现价查询
type AssetService struct {
	repo        domain.Repository
	cache       domain.PriceCache
	source      domain.QuoteSource
	concurrency int
	metrics     *metrics.Metrics
}

func NewAssetService(repo domain.Repository, cache domain.PriceCache, source domain.QuoteSource, concurrency int, m *metrics.Metrics) *AssetService {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &AssetService{
		repo:        repo,
		cache:       cache,
		source:      source,
		concurrency: concurrency,
		metrics:     m,
	}
}

// Create 新增资产
func (s *AssetService) Create(ctx context.Context, ticker, name string) (*domain.Asset, error) {
	if ticker == "" || name == "" {
		return nil, fmt.Errorf("ticker and name are required")
	}
	asset := &domain.Asset{Ticker: ticker, Name: name}
	if err := s.repo.Save(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	return asset, nil
}

// Get 按 ID 查询资产
func (s *AssetService) Get(ctx context.Context, id uint) (*domain.Asset, error) {
	return s.repo.GetByID(ctx, id)
}

// List 列出全部资产
func (s *AssetService) List(ctx context.Context) ([]*domain.Asset, error) {
	return s.repo.List(ctx)
}

// ListHoldingsByClient 返回客户持仓（ticker + 数量）
func (s *AssetService) ListHoldingsByClient(ctx context.Context, clientID uint) ([]domain.Holding, error) {
	return s.repo.ListHoldingsByClient(ctx, clientID)
}

// GetPrice 现价查询，cache-aside：命中直接返回，未命中回源并写入缓存
func (s *AssetService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, hit, err := s.cache.GetPrice(ctx, symbol)
	if err == nil && hit {
		if s.metrics != nil {
			s.metrics.QuoteCacheHits.Inc()
		}
		return price, nil
	}
	if err != nil {
		// 缓存故障降级为直接回源
		logger.Warn(ctx, "price cache unavailable", "symbol", symbol, "error", err)
	}

	if s.metrics != nil {
		s.metrics.QuoteLookupsTotal.Inc()
	}
	price, err = s.source.LatestClose(ctx, symbol)
	if err != nil {
		if s.metrics != nil {
			s.metrics.QuoteLookupErrors.Inc()
		}
		return decimal.Zero, err
	}

	if cacheErr := s.cache.SetPrice(ctx, symbol, price); cacheErr != nil {
		logger.Warn(ctx, "failed to cache price", "symbol", symbol, "error", cacheErr)
	}
	return price, nil
}

// PricedAsset 附带现价的资产条目；行情获取失败时 Price 为空
type PricedAsset struct {
	ID     uint             `json:"id"`
	Ticker string           `json:"ticker"`
	Name   string           `json:"name"`
	Price  *decimal.Decimal `json:"price"`
}

// PricedAssetPage 分页结果
type PricedAssetPage struct {
	Items      []PricedAsset `json:"items"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"total_pages"`
}

// ListWithPrices 分页列出资产并发拉取现价，单个失败不影响整页
func (s *AssetService) ListWithPrices(ctx context.Context, page, perPage int) (*PricedAssetPage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 100
	}

	assets, total, err := s.repo.ListPage(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	items := make([]PricedAsset, len(assets))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, a := range assets {
		items[i] = PricedAsset{ID: a.ID, Ticker: a.Ticker, Name: a.Name}
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			price, err := s.GetPrice(ctx, ticker)
			if err != nil {
				logger.Warn(ctx, "price lookup failed, skipping", "ticker", ticker, "error", err)
				return
			}
			items[i].Price = &price
		}(i, a.Ticker)
	}
	wg.Wait()

	return &PricedAssetPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + int64(perPage) - 1) / int64(perPage),
	}, nil
}
