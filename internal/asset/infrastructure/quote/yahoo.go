// Package quote 实现对外部行情源（Yahoo Finance chart API）的适配
package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/portfoliotracker/internal/asset/domain"
)

// DailyClose 某一交易日的收盘价
type DailyClose struct {
	Date  time.Time
	Close decimal.Decimal
}

// YahooClient 行情源客户端
type YahooClient struct {
	http *resty.Client
}

var _ domain.QuoteSource = (*YahooClient)(nil)

func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "portfoliotracker/1.0")
	return &YahooClient{http: client}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// LatestClose 返回 symbol 最近一个交易日的收盘价
func (c *YahooClient) LatestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	closes, err := c.fetch(ctx, symbol, map[string]string{
		"range":    "1d",
		"interval": "1d",
	})
	if err != nil {
		return decimal.Zero, err
	}

	// 末尾取最后一个非空收盘价
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i].valid {
			return closes[i].Close, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w for %s", domain.ErrNoPriceData, symbol)
}

// DailyCloses 返回 [start, end) 区间内每个交易日的收盘价，按日期升序
func (c *YahooClient) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]DailyClose, error) {
	points, err := c.fetch(ctx, symbol, map[string]string{
		"period1":  fmt.Sprintf("%d", start.Unix()),
		"period2":  fmt.Sprintf("%d", end.Unix()),
		"interval": "1d",
	})
	if err != nil {
		return nil, err
	}

	result := make([]DailyClose, 0, len(points))
	for _, p := range points {
		if !p.valid {
			continue
		}
		result = append(result, DailyClose{Date: p.Date, Close: p.Close})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w for %s", domain.ErrNoPriceData, symbol)
	}
	return result, nil
}

type closePoint struct {
	Date  time.Time
	Close decimal.Decimal
	valid bool
}

func (c *YahooClient) fetch(ctx context.Context, symbol string, params map[string]string) ([]closePoint, error) {
	var body chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get(fmt.Sprintf("/v8/finance/chart/%s", symbol))
	if err != nil {
		return nil, fmt.Errorf("quote source request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote source returned status %d for %s", resp.StatusCode(), symbol)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("quote source error for %s: %s", symbol, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w for %s", domain.ErrNoPriceData, symbol)
	}

	r := body.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close
	points := make([]closePoint, 0, len(closes))
	for i, cl := range closes {
		p := closePoint{}
		if i < len(r.Timestamp) {
			p.Date = time.Unix(r.Timestamp[i], 0).UTC().Truncate(24 * time.Hour)
		}
		if cl != nil {
			p.Close = decimal.NewFromFloat(*cl)
			p.valid = true
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w for %s", domain.ErrNoPriceData, symbol)
	}
	return points, nil
}
