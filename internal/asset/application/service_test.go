package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/portfoliotracker/internal/asset/domain"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Save(ctx context.Context, asset *domain.Asset) error {
	return m.Called(ctx, asset).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uint) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *mockRepository) GetByTicker(ctx context.Context, ticker string) (*domain.Asset, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

func (m *mockRepository) ListPage(ctx context.Context, offset, limit int) ([]*domain.Asset, int64, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Asset), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) ListHoldingsByClient(ctx context.Context, clientID uint) ([]domain.Holding, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holding), args.Error(1)
}

type mockPriceCache struct{ mock.Mock }

func (m *mockPriceCache) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *mockPriceCache) SetPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	return m.Called(ctx, symbol, price).Error(0)
}

type mockQuoteSource struct{ mock.Mock }

func (m *mockQuoteSource) LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestGetPriceCacheHitSkipsSource(t *testing.T) {
	repo := &mockRepository{}
	cache := &mockPriceCache{}
	source := &mockQuoteSource{}
	svc := NewAssetService(repo, cache, source, 10, nil)

	cache.On("GetPrice", mock.Anything, "AAPL").Return(decimal.NewFromInt(180), true, nil)

	price, err := svc.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(180)))
	source.AssertNotCalled(t, "LatestClose", mock.Anything, mock.Anything)
}

func TestGetPriceCacheMissFillsCache(t *testing.T) {
	repo := &mockRepository{}
	cache := &mockPriceCache{}
	source := &mockQuoteSource{}
	svc := NewAssetService(repo, cache, source, 10, nil)

	cache.On("GetPrice", mock.Anything, "AAPL").Return(decimal.Zero, false, nil)
	source.On("LatestClose", mock.Anything, "AAPL").Return(decimal.NewFromInt(185), nil)
	cache.On("SetPrice", mock.Anything, "AAPL", decimal.NewFromInt(185)).Return(nil)

	price, err := svc.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(185)))
	cache.AssertExpectations(t)
}

func TestGetPriceCacheFailureFallsThroughToSource(t *testing.T) {
	repo := &mockRepository{}
	cache := &mockPriceCache{}
	source := &mockQuoteSource{}
	svc := NewAssetService(repo, cache, source, 10, nil)

	cache.On("GetPrice", mock.Anything, "AAPL").Return(decimal.Zero, false, errors.New("redis down"))
	source.On("LatestClose", mock.Anything, "AAPL").Return(decimal.NewFromInt(190), nil)
	cache.On("SetPrice", mock.Anything, "AAPL", decimal.NewFromInt(190)).Return(errors.New("redis down"))

	price, err := svc.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(190)))
}

func TestGetPriceSourceFailure(t *testing.T) {
	repo := &mockRepository{}
	cache := &mockPriceCache{}
	source := &mockQuoteSource{}
	svc := NewAssetService(repo, cache, source, 10, nil)

	cache.On("GetPrice", mock.Anything, "AAPL").Return(decimal.Zero, false, nil)
	source.On("LatestClose", mock.Anything, "AAPL").Return(decimal.Zero, domain.ErrNoPriceData)

	_, err := svc.GetPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrNoPriceData)
}

func TestListWithPricesIsolatesFailures(t *testing.T) {
	repo := &mockRepository{}
	cache := &mockPriceCache{}
	source := &mockQuoteSource{}
	svc := NewAssetService(repo, cache, source, 2, nil)

	repo.On("ListPage", mock.Anything, 0, 10).Return([]*domain.Asset{
		{ID: 1, Ticker: "AAPL", Name: "Apple Inc."},
		{ID: 2, Ticker: "BROKE", Name: "Broken Corp."},
	}, int64(2), nil)
	cache.On("GetPrice", mock.Anything, mock.Anything).Return(decimal.Zero, false, nil)
	source.On("LatestClose", mock.Anything, "AAPL").Return(decimal.NewFromInt(180), nil)
	source.On("LatestClose", mock.Anything, "BROKE").Return(decimal.Zero, errors.New("no data"))
	cache.On("SetPrice", mock.Anything, "AAPL", mock.Anything).Return(nil)

	page, err := svc.ListWithPrices(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	require.NotNil(t, page.Items[0].Price)
	assert.True(t, page.Items[0].Price.Equal(decimal.NewFromInt(180)))
	assert.Nil(t, page.Items[1].Price)
	assert.Equal(t, int64(1), page.TotalPages)
}

func TestCreateRequiresTickerAndName(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAssetService(repo, &mockPriceCache{}, &mockQuoteSource{}, 10, nil)

	_, err := svc.Create(context.Background(), "", "Apple Inc.")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
