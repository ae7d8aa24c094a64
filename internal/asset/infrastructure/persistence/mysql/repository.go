package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/portfoliotracker/internal/asset/domain"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Save(ctx context.Context, asset *domain.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *AssetRepository) GetByID(ctx context.Context, id uint) (*domain.Asset, error) {
	var a domain.Asset
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) GetByTicker(ctx context.Context, ticker string) (*domain.Asset, error) {
	var a domain.Asset
	if err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	var assets []*domain.Asset
	err := r.db.WithContext(ctx).Order("ticker asc").Find(&assets).Error
	return assets, err
}

func (r *AssetRepository) ListPage(ctx context.Context, offset, limit int) ([]*domain.Asset, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Asset{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var assets []*domain.Asset
	err := r.db.WithContext(ctx).Order("ticker asc").Offset(offset).Limit(limit).Find(&assets).Error
	return assets, total, err
}

// ListHoldingsByClient 汇总客户的有效持仓，同一 ticker 数量合并
func (r *AssetRepository) ListHoldingsByClient(ctx context.Context, clientID uint) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := r.db.WithContext(ctx).
		Table("assets").
		Select("assets.ticker, SUM(allocations.quantity) AS quantity").
		Joins("JOIN allocations ON allocations.asset_id = assets.id").
		Where("allocations.client_id = ? AND allocations.is_active = ?", clientID, true).
		Group("assets.ticker").
		Scan(&holdings).Error
	return holdings, err
}
