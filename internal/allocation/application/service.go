package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/portfoliotracker/internal/allocation/domain"
	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/logger"
)

// AssetCatalog 依赖的资产目录能力
type AssetCatalog interface {
	Get(ctx context.Context, id uint) (*assetdomain.Asset, error)
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// AllocationService 客户持仓分配管理
type AllocationService struct {
	repo   domain.Repository
	assets AssetCatalog
	now    func() time.Time
}

func NewAllocationService(repo domain.Repository, assets AssetCatalog) *AllocationService {
	return &AllocationService{repo: repo, assets: assets, now: time.Now}
}

// CreateParams 创建参数；BuyPrice 为空时取现价，BuyDate 为空时取今天
type CreateParams struct {
	ClientID uint
	AssetID  uint
	Quantity decimal.Decimal
	BuyPrice *decimal.Decimal
	BuyDate  *time.Time
}

func (s *AllocationService) Create(ctx context.Context, params CreateParams) (*domain.Allocation, error) {
	asset, err := s.assets.Get(ctx, params.AssetID)
	if err != nil {
		return nil, err
	}

	buyPrice := decimal.Zero
	if params.BuyPrice != nil {
		buyPrice = *params.BuyPrice
	} else {
		price, err := s.assets.GetPrice(ctx, asset.Ticker)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve buy price for %s: %w", asset.Ticker, err)
		}
		buyPrice = price
		logger.Info(ctx, "buy price defaulted to live quote", "ticker", asset.Ticker, "price", price)
	}

	now := s.now()
	buyDate := now.UTC().Truncate(24 * time.Hour)
	if params.BuyDate != nil {
		buyDate = params.BuyDate.UTC().Truncate(24 * time.Hour)
	}

	allocation := &domain.Allocation{
		ClientID: params.ClientID,
		AssetID:  params.AssetID,
		Quantity: params.Quantity,
		BuyPrice: buyPrice,
		BuyDate:  buyDate,
		IsActive: true,
	}
	if err := allocation.Validate(now); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, allocation); err != nil {
		return nil, fmt.Errorf("failed to create allocation: %w", err)
	}
	return allocation, nil
}

func (s *AllocationService) Get(ctx context.Context, id uint) (*domain.Allocation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AllocationService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Allocation, error) {
	return s.repo.List(ctx, filter)
}

func (s *AllocationService) ListByClient(ctx context.Context, clientID uint) ([]domain.WithTicker, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// UpdateParams 更新字段，nil 表示不变
type UpdateParams struct {
	Quantity *decimal.Decimal
	BuyPrice *decimal.Decimal
	BuyDate  *time.Time
	IsActive *bool
}

func (s *AllocationService) Update(ctx context.Context, id uint, params UpdateParams) (*domain.Allocation, error) {
	allocation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Quantity != nil {
		allocation.Quantity = *params.Quantity
	}
	if params.BuyPrice != nil {
		allocation.BuyPrice = *params.BuyPrice
	}
	if params.BuyDate != nil {
		allocation.BuyDate = params.BuyDate.UTC().Truncate(24 * time.Hour)
	}
	if params.IsActive != nil {
		allocation.IsActive = *params.IsActive
	}
	if err := allocation.Validate(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, allocation); err != nil {
		return nil, fmt.Errorf("failed to update allocation: %w", err)
	}
	return allocation, nil
}

// Deactivate 软删除分配记录
func (s *AllocationService) Deactivate(ctx context.Context, id uint) error {
	allocation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	allocation.Deactivate()
	return s.repo.Save(ctx, allocation)
}
