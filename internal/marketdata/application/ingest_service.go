package application

import (
	"context"
	"time"

	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	"github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/logger"
	"github.com/wyfcoding/portfoliotracker/pkg/metrics"
)

// AssetCatalog 依赖的资产目录能力
type AssetCatalog interface {
	List(ctx context.Context) ([]*assetdomain.Asset, error)
}

// IngestService 每日收盘价采集与查询
type IngestService struct {
	assets    AssetCatalog
	history   domain.HistorySource
	repo      domain.Repository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewIngestService(assets AssetCatalog, history domain.HistorySource, repo domain.Repository, publisher domain.EventPublisher, m *metrics.Metrics) *IngestService {
	return &IngestService{
		assets:    assets,
		history:   history,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// IngestYesterday 采集全部资产昨日收盘价；单资产失败跳过，不中断批次
func (s *IngestService) IngestYesterday(ctx context.Context) (int, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return s.Backfill(ctx, today.AddDate(0, 0, -1), today)
}

// Backfill 采集 [from, to) 区间的收盘价，按 (asset_id, date) 幂等写入
func (s *IngestService) Backfill(ctx context.Context, from, to time.Time) (int, error) {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, asset := range assets {
		closes, err := s.history.DailyCloses(ctx, asset.Ticker, from, to)
		if err != nil {
			logger.Warn(ctx, "daily close fetch failed, skipping asset",
				"ticker", asset.Ticker, "error", err)
			continue
		}

		for _, point := range closes {
			dr := &domain.DailyReturn{
				AssetID:    asset.ID,
				Date:       point.Date,
				ClosePrice: point.Close,
			}
			if err := s.repo.Upsert(ctx, dr); err != nil {
				logger.Error(ctx, "failed to store daily return",
					"ticker", asset.Ticker, "date", point.Date, "error", err)
				continue
			}
			stored++
			if s.metrics != nil {
				s.metrics.DailyReturnsIngested.Inc()
			}

			event := domain.DailyCloseStored{
				AssetID:    asset.ID,
				Ticker:     asset.Ticker,
				Date:       point.Date.Format("2006-01-02"),
				ClosePrice: point.Close,
				StoredAt:   s.now(),
			}
			if err := s.publisher.PublishDailyCloseStored(ctx, event); err != nil {
				// 事件发布失败不回滚入库
				logger.Warn(ctx, "failed to publish daily close event",
					"ticker", asset.Ticker, "error", err)
			}
		}
	}

	logger.Info(ctx, "daily return ingestion finished", "stored", stored, "assets", len(assets))
	return stored, nil
}

// RunPeriodic 以固定间隔执行采集，直到 ctx 取消
func (s *IngestService) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info(ctx, "ingestion scheduler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "ingestion scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.IngestYesterday(ctx); err != nil {
				logger.Error(ctx, "scheduled ingestion failed", "error", err)
			}
		}
	}
}

// History 查询某资产的收盘价序列，可选日期范围
func (s *IngestService) History(ctx context.Context, assetID uint, from, to *time.Time) ([]domain.DailyReturn, error) {
	if from != nil && to != nil {
		return s.repo.ByAssetBetween(ctx, assetID, *from, *to)
	}
	return s.repo.ByAsset(ctx, assetID)
}
