// Package quote 把资产上下文的行情客户端适配为本上下文的 HistorySource
package quote

import (
	"context"
	"time"

	assetquote "github.com/wyfcoding/portfoliotracker/internal/asset/infrastructure/quote"
	"github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
)

// SourceAdapter 包装 YahooClient
type SourceAdapter struct {
	client *assetquote.YahooClient
}

var _ domain.HistorySource = (*SourceAdapter)(nil)

func NewSourceAdapter(client *assetquote.YahooClient) *SourceAdapter {
	return &SourceAdapter{client: client}
}

func (a *SourceAdapter) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePoint, error) {
	closes, err := a.client.DailyCloses(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	points := make([]domain.ClosePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.ClosePoint{Date: c.Date, Close: c.Close}
	}
	return points, nil
}
