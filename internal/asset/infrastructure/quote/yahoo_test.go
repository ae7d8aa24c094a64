package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/portfoliotracker/internal/asset/domain"
)

func chartBody(timestamps []int64, closes []string) string {
	ts := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", t)
	}
	cl := ""
	for i, c := range closes {
		if i > 0 {
			cl += ","
		}
		cl += c
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, ts, cl)
}

func TestLatestCloseSkipsTrailingNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody([]int64{1672531200, 1672617600}, []string{"182.5", "null"}))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	price, err := client.LatestClose(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(182.5)))
}

func TestLatestCloseAllNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody([]int64{1672531200}, []string{"null"}))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	_, err := client.LatestClose(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrNoPriceData)
}

func TestDailyClosesAscending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody(
			[]int64{1672531200, 1672617600, 1672704000},
			[]string{"100", "null", "108"},
		))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	closes, err := client.DailyCloses(context.Background(), "AAPL",
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// 空收盘价的交易日被剔除
	require.Len(t, closes, 2)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), closes[0].Date)
	assert.True(t, closes[0].Close.Equal(decimal.NewFromInt(100)))
	assert.True(t, closes[1].Close.Equal(decimal.NewFromInt(108)))
}

func TestFetchSourceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	_, err := client.LatestClose(context.Background(), "GHOST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}
