package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func applHistory() []PricePoint {
	return []PricePoint{
		{Date: day("2023-01-01"), Close: d("100")},
		{Date: day("2023-01-02"), Close: d("105")},
		{Date: day("2023-01-03"), Close: d("108")},
		{Date: day("2023-01-04"), Close: d("115")},
	}
}

func applAllocations() []Allocation {
	return []Allocation{
		{Ticker: "AAPL", Quantity: d("10"), BuyPrice: d("100"), BuyDate: day("2023-01-01")},
		{Ticker: "AAPL", Quantity: d("5"), BuyPrice: d("110"), BuyDate: day("2023-01-03")},
	}
}

func TestAggregateMergesAllocationsOfSameTicker(t *testing.T) {
	records := Aggregate(applAllocations(), map[string][]PricePoint{"AAPL": applHistory()})
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "AAPL", rec.Ticker)
	assert.True(t, rec.TotalInvested.Equal(d("1550")), "total_invested = %s", rec.TotalInvested)
	assert.Equal(t, "2023-01-01", rec.StartDate)
	assert.Equal(t, "2023-01-04", rec.EndDate)

	// 当前市值：两笔持仓都取 01-04 的收盘 115
	assert.True(t, rec.CurrentValue.Equal(d("1725")), "current_value = %s", rec.CurrentValue)
	assert.True(t, rec.ProfitLoss.Equal(d("175")), "profit_loss = %s", rec.ProfitLoss)
	assert.True(t, rec.PercentageChange.Equal(d("11.29")), "percentage_change = %s", rec.PercentageChange)
	assert.True(t, rec.AvgDailyReturn.Equal(d("4.78")), "avg_daily_return = %s", rec.AvgDailyReturn)
}

func TestAggregateCurveWeightedByInvestment(t *testing.T) {
	records := Aggregate(applAllocations(), map[string][]PricePoint{"AAPL": applHistory()})
	require.Len(t, records, 1)

	curve := records[0].PerformanceCurve
	require.Len(t, curve, 4)

	assert.Equal(t, "2023-01-01", curve[0].Date)
	assert.True(t, curve[0].AccumulatedReturnPct.Equal(d("0")))
	// 01-02 只有第一笔持仓在场：(105-100)/100 = 5%
	assert.Equal(t, "2023-01-02", curve[1].Date)
	assert.True(t, curve[1].AccumulatedReturnPct.Equal(d("5")))
	// 01-03 起两笔加权：(8%×1000 + (-1.82%)×550) / 1550
	assert.Equal(t, "2023-01-03", curve[2].Date)
	assert.True(t, curve[2].AccumulatedReturnPct.Equal(d("4.52")), "got %s", curve[2].AccumulatedReturnPct)
	assert.Equal(t, "2023-01-04", curve[3].Date)
	assert.True(t, curve[3].AccumulatedReturnPct.Equal(d("11.29")), "got %s", curve[3].AccumulatedReturnPct)
}

func TestAggregateCurveDatesStrictlyAscending(t *testing.T) {
	records := Aggregate(applAllocations(), map[string][]PricePoint{"AAPL": applHistory()})
	require.Len(t, records, 1)

	curve := records[0].PerformanceCurve
	for i := 1; i < len(curve); i++ {
		assert.Less(t, curve[i-1].Date, curve[i].Date)
	}
}

func TestAggregateExcludesTickerWithoutHistory(t *testing.T) {
	allocs := append(applAllocations(), Allocation{
		Ticker: "GHOST", Quantity: d("3"), BuyPrice: d("50"), BuyDate: day("2023-01-01"),
	})
	records := Aggregate(allocs, map[string][]PricePoint{
		"AAPL":  applHistory(),
		"GHOST": nil,
	})
	require.Len(t, records, 1)
	assert.Equal(t, "AAPL", records[0].Ticker)
}

func TestAggregateZeroInvestedYieldsZeroPercentageChange(t *testing.T) {
	allocs := []Allocation{
		{Ticker: "FREE", Quantity: d("10"), BuyPrice: d("0"), BuyDate: day("2023-01-01")},
	}
	records := Aggregate(allocs, map[string][]PricePoint{"FREE": applHistory()})
	require.Len(t, records, 1)
	assert.True(t, records[0].PercentageChange.Equal(d("0")))
}

func TestAggregateIsIdempotent(t *testing.T) {
	histories := map[string][]PricePoint{"AAPL": applHistory()}
	first := Aggregate(applAllocations(), histories)
	second := Aggregate(applAllocations(), histories)
	assert.Equal(t, first, second)
}

func TestAggregateCurveStartsAtEarliestBuyDate(t *testing.T) {
	allocs := []Allocation{
		{Ticker: "AAPL", Quantity: d("5"), BuyPrice: d("110"), BuyDate: day("2023-01-03")},
	}
	records := Aggregate(allocs, map[string][]PricePoint{"AAPL": applHistory()})
	require.Len(t, records, 1)

	rec := records[0]
	// 曲线从买入日开始，但 start/end 仍取完整历史
	require.Len(t, rec.PerformanceCurve, 2)
	assert.Equal(t, "2023-01-03", rec.PerformanceCurve[0].Date)
	assert.Equal(t, "2023-01-01", rec.StartDate)
	assert.Equal(t, "2023-01-04", rec.EndDate)
}

func TestAvgDailyReturnSinglePoint(t *testing.T) {
	allocs := []Allocation{
		{Ticker: "AAPL", Quantity: d("1"), BuyPrice: d("100"), BuyDate: day("2023-01-01")},
	}
	history := []PricePoint{{Date: day("2023-01-01"), Close: d("100")}}
	records := Aggregate(allocs, map[string][]PricePoint{"AAPL": history})
	require.Len(t, records, 1)
	assert.True(t, records[0].AvgDailyReturn.Equal(d("0")))
}

func TestAggregateMultipleTickersSortedOutput(t *testing.T) {
	allocs := []Allocation{
		{Ticker: "MSFT", Quantity: d("2"), BuyPrice: d("200"), BuyDate: day("2023-01-01")},
		{Ticker: "AAPL", Quantity: d("1"), BuyPrice: d("100"), BuyDate: day("2023-01-01")},
	}
	histories := map[string][]PricePoint{
		"AAPL": applHistory(),
		"MSFT": {{Date: day("2023-01-01"), Close: d("210")}},
	}
	records := Aggregate(allocs, histories)
	require.Len(t, records, 2)
	assert.Equal(t, "AAPL", records[0].Ticker)
	assert.Equal(t, "MSFT", records[1].Ticker)
}
