package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
)

type DailyReturnRepository struct {
	db *gorm.DB
}

func NewDailyReturnRepository(db *gorm.DB) *DailyReturnRepository {
	return &DailyReturnRepository{db: db}
}

// Upsert 冲突时覆盖收盘价，迟到修正与首次写入同路径
func (r *DailyReturnRepository) Upsert(ctx context.Context, dr *domain.DailyReturn) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"close_price"}),
	}).Create(dr).Error
}

func (r *DailyReturnRepository) ByAsset(ctx context.Context, assetID uint) ([]domain.DailyReturn, error) {
	var rows []domain.DailyReturn
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("date asc").
		Find(&rows).Error
	return rows, err
}

func (r *DailyReturnRepository) ByAssetBetween(ctx context.Context, assetID uint, from, to time.Time) ([]domain.DailyReturn, error) {
	var rows []domain.DailyReturn
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND date >= ? AND date <= ?", assetID, from, to).
		Order("date asc").
		Find(&rows).Error
	return rows, err
}
