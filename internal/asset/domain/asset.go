package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound 资产不存在
	ErrNotFound = errors.New("asset not found")
	// ErrNoPriceData 行情源没有该 symbol 的价格数据
	ErrNoPriceData = errors.New("no price data found")
)

// Asset 可交易资产
type Asset struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Ticker string `gorm:"column:ticker;type:varchar(20);uniqueIndex;not null" json:"ticker"`
	Name   string `gorm:"column:name;type:varchar(255);not null" json:"name"`
}

func (Asset) TableName() string { return "assets" }

// Holding 某客户对一个 ticker 的持仓数量（跨 allocation 汇总前的单行）
type Holding struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Repository 资产仓储
type Repository interface {
	Save(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, id uint) (*Asset, error)
	GetByTicker(ctx context.Context, ticker string) (*Asset, error)
	List(ctx context.Context) ([]*Asset, error)
	ListPage(ctx context.Context, offset, limit int) ([]*Asset, int64, error)
	// ListHoldingsByClient 通过 allocations 连接查询客户持仓（ticker + 数量）
	ListHoldingsByClient(ctx context.Context, clientID uint) ([]Holding, error)
}

// QuoteSource 外部行情源：按 symbol 返回最新收盘价
type QuoteSource interface {
	LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PriceCache 现价缓存能力，注入而非进程级单例
type PriceCache interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error)
	SetPrice(ctx context.Context, symbol string, price decimal.Decimal) error
}
