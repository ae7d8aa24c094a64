package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ClosePoint 行情源返回的单日收盘价
type ClosePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// HistorySource 外部行情源的历史收盘价读取能力
type HistorySource interface {
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]ClosePoint, error)
}
