package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/portfoliotracker/internal/allocation/domain"
)

type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) Save(ctx context.Context, allocation *domain.Allocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

func (r *AllocationRepository) GetByID(ctx context.Context, id uint) (*domain.Allocation, error) {
	var a domain.Allocation
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AllocationRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Allocation, error) {
	query := r.db.WithContext(ctx).Model(&domain.Allocation{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.AssetID != nil {
		query = query.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	var allocations []*domain.Allocation
	err := query.Order("id asc").Offset(filter.Offset).Limit(filter.Limit).Find(&allocations).Error
	return allocations, err
}

func (r *AllocationRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.WithTicker, error) {
	return r.listByClient(ctx, clientID, false)
}

func (r *AllocationRepository) ListActiveByClient(ctx context.Context, clientID uint) ([]domain.WithTicker, error) {
	return r.listByClient(ctx, clientID, true)
}

func (r *AllocationRepository) listByClient(ctx context.Context, clientID uint, activeOnly bool) ([]domain.WithTicker, error) {
	query := r.db.WithContext(ctx).
		Table("allocations").
		Select("allocations.*, assets.ticker AS ticker").
		Joins("JOIN assets ON assets.id = allocations.asset_id").
		Where("allocations.client_id = ?", clientID)
	if activeOnly {
		query = query.Where("allocations.is_active = ?", true)
	}

	var rows []domain.WithTicker
	err := query.Order("allocations.buy_date asc, allocations.id asc").Scan(&rows).Error
	return rows, err
}
