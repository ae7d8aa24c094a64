package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	"github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
	"github.com/wyfcoding/portfoliotracker/internal/marketdata/infrastructure/messaging"
)

type mockAssetCatalog struct{ mock.Mock }

func (m *mockAssetCatalog) List(ctx context.Context) ([]*assetdomain.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assetdomain.Asset), args.Error(1)
}

type mockHistorySource struct{ mock.Mock }

func (m *mockHistorySource) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePoint, error) {
	args := m.Called(ctx, symbol, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClosePoint), args.Error(1)
}

type mockReturnRepo struct{ mock.Mock }

func (m *mockReturnRepo) Upsert(ctx context.Context, dr *domain.DailyReturn) error {
	return m.Called(ctx, dr).Error(0)
}

func (m *mockReturnRepo) ByAsset(ctx context.Context, assetID uint) ([]domain.DailyReturn, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyReturn), args.Error(1)
}

func (m *mockReturnRepo) ByAssetBetween(ctx context.Context, assetID uint, from, to time.Time) ([]domain.DailyReturn, error) {
	args := m.Called(ctx, assetID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyReturn), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishDailyCloseStored(ctx context.Context, event domain.DailyCloseStored) error {
	return m.Called(ctx, event).Error(0)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBackfillSkipsFailedAsset(t *testing.T) {
	assets := &mockAssetCatalog{}
	history := &mockHistorySource{}
	repo := &mockReturnRepo{}
	svc := NewIngestService(assets, history, repo, messaging.NopPublisher{}, nil)

	from, to := day("2024-03-11"), day("2024-03-13")

	assets.On("List", mock.Anything).Return([]*assetdomain.Asset{
		{ID: 1, Ticker: "AAPL"},
		{ID: 2, Ticker: "BROKE"},
	}, nil)
	history.On("DailyCloses", mock.Anything, "AAPL", from, to).Return([]domain.ClosePoint{
		{Date: day("2024-03-11"), Close: decimal.NewFromInt(100)},
		{Date: day("2024-03-12"), Close: decimal.NewFromInt(102)},
	}, nil)
	history.On("DailyCloses", mock.Anything, "BROKE", from, to).Return(nil, errors.New("upstream error"))
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	stored, err := svc.Backfill(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	repo.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestBackfillPublishFailureDoesNotRollback(t *testing.T) {
	assets := &mockAssetCatalog{}
	history := &mockHistorySource{}
	repo := &mockReturnRepo{}
	publisher := &mockPublisher{}
	svc := NewIngestService(assets, history, repo, publisher, nil)

	from, to := day("2024-03-11"), day("2024-03-12")

	assets.On("List", mock.Anything).Return([]*assetdomain.Asset{{ID: 1, Ticker: "AAPL"}}, nil)
	history.On("DailyCloses", mock.Anything, "AAPL", from, to).Return([]domain.ClosePoint{
		{Date: day("2024-03-11"), Close: decimal.NewFromInt(100)},
	}, nil)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishDailyCloseStored", mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	stored, err := svc.Backfill(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestHistorySelectsRangeQuery(t *testing.T) {
	assets := &mockAssetCatalog{}
	history := &mockHistorySource{}
	repo := &mockReturnRepo{}
	svc := NewIngestService(assets, history, repo, messaging.NopPublisher{}, nil)

	from, to := day("2024-03-01"), day("2024-03-13")
	repo.On("ByAssetBetween", mock.Anything, uint(1), from, to).Return([]domain.DailyReturn{}, nil)
	repo.On("ByAsset", mock.Anything, uint(1)).Return([]domain.DailyReturn{}, nil)

	_, err := svc.History(context.Background(), 1, &from, &to)
	require.NoError(t, err)
	repo.AssertCalled(t, "ByAssetBetween", mock.Anything, uint(1), from, to)

	_, err = svc.History(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	repo.AssertCalled(t, "ByAsset", mock.Anything, uint(1))
}
