package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound 分配记录不存在
	ErrNotFound = errors.New("allocation not found")
	// ErrInvalidAllocation 数量/价格/日期校验失败
	ErrInvalidAllocation = errors.New("invalid allocation")
)

// Allocation 一笔客户买入记录
type Allocation struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	ClientID uint            `gorm:"column:client_id;index;not null" json:"client_id"`
	AssetID  uint            `gorm:"column:asset_id;index;not null" json:"asset_id"`
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(20,6);not null" json:"quantity"`
	BuyPrice decimal.Decimal `gorm:"column:buy_price;type:decimal(20,6);not null" json:"buy_price"`
	BuyDate  time.Time       `gorm:"column:buy_date;type:date;not null" json:"buy_date"`
	IsActive bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Allocation) TableName() string { return "allocations" }

// Validate 校验不变式：quantity > 0, buy_price > 0, buy_date 不晚于今天
func (a *Allocation) Validate(now time.Time) error {
	if !a.Quantity.IsPositive() {
		return errors.Join(ErrInvalidAllocation, errors.New("quantity must be positive"))
	}
	if !a.BuyPrice.IsPositive() {
		return errors.Join(ErrInvalidAllocation, errors.New("buy_price must be positive"))
	}
	if a.BuyDate.After(now) {
		return errors.Join(ErrInvalidAllocation, errors.New("buy_date cannot be in the future"))
	}
	return nil
}

// Deactivate 软删除：历史绩效口径不变，行不物理删除
func (a *Allocation) Deactivate() {
	a.IsActive = false
}

// WithTicker 读取侧视图：把所属资产的 ticker 显式带出，聚合器不做隐式解引用
type WithTicker struct {
	Allocation
	Ticker string `json:"ticker"`
}

// ListFilter 列表过滤条件
type ListFilter struct {
	IsActive *bool
	ClientID *uint
	AssetID  *uint
	Offset   int
	Limit    int
}

// Repository 分配仓储
type Repository interface {
	Save(ctx context.Context, allocation *Allocation) error
	GetByID(ctx context.Context, id uint) (*Allocation, error)
	List(ctx context.Context, filter ListFilter) ([]*Allocation, error)
	// ListByClient 返回客户全部分配记录，ticker 已连接
	ListByClient(ctx context.Context, clientID uint) ([]WithTicker, error)
	// ListActiveByClient 同上，仅活跃记录
	ListActiveByClient(ctx context.Context, clientID uint) ([]WithTicker, error)
}
