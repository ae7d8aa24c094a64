package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyReturn 一个资产在一个交易日的收盘价，唯一键 (asset_id, date)
type DailyReturn struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	AssetID    uint            `gorm:"column:asset_id;uniqueIndex:uniq_asset_date;not null" json:"asset_id"`
	Date       time.Time       `gorm:"column:date;type:date;uniqueIndex:uniq_asset_date;not null" json:"date"`
	ClosePrice decimal.Decimal `gorm:"column:close_price;type:decimal(20,6);not null" json:"close_price"`
}

func (DailyReturn) TableName() string { return "daily_returns" }

// Repository 收盘价仓储，读取一律按日期升序
type Repository interface {
	// Upsert 按 (asset_id, date) 插入或覆盖，迟到的修正走同一路径
	Upsert(ctx context.Context, dr *DailyReturn) error
	ByAsset(ctx context.Context, assetID uint) ([]DailyReturn, error)
	ByAssetBetween(ctx context.Context, assetID uint, from, to time.Time) ([]DailyReturn, error)
}

// DailyCloseStored 收盘价入库事件
type DailyCloseStored struct {
	AssetID    uint            `json:"asset_id"`
	Ticker     string          `json:"ticker"`
	Date       string          `json:"date"`
	ClosePrice decimal.Decimal `json:"close_price"`
	StoredAt   time.Time       `json:"stored_at"`
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	PublishDailyCloseStored(ctx context.Context, event DailyCloseStored) error
}
