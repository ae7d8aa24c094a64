package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Allocation 是聚合计算的输入：已经带上资产代码的持仓快照。
// 代码(Ticker)由调用方显式补齐，聚合器内部不做任何数据访问。
type Allocation struct {
	Ticker   string
	Quantity decimal.Decimal
	BuyPrice decimal.Decimal
	BuyDate  time.Time
}

// PricePoint 单日收盘价
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// CurvePoint 累计收益率曲线上的一个点
type CurvePoint struct {
	Date                 string          `json:"date"`
	AccumulatedReturnPct decimal.Decimal `json:"accumulated_return_pct"`
}

// PerformanceRecord 按资产代码合并后的绩效记录；同一代码的多笔持仓合并为一条。
type PerformanceRecord struct {
	Ticker           string          `json:"ticker"`
	TotalInvested    decimal.Decimal `json:"total_invested"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	PercentageChange decimal.Decimal `json:"percentage_change"`
	AvgDailyReturn   decimal.Decimal `json:"avg_daily_return"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	PerformanceCurve []CurvePoint    `json:"performance_curve"`
}

const dateLayout = "2006-01-02"

var oneHundred = decimal.NewFromInt(100)

// round2 统一的两位小数舍入策略，只在结果装配处使用
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Aggregate 将一个客户的全部有效持仓与各资产的日收益历史合并为按代码分组的绩效记录。
// histories 的 key 为资产代码，值为按日期升序排列的完整历史。
// 没有任何历史记录的代码会被跳过，不视为错误。
// 纯函数：相同输入必定产生相同输出。
func Aggregate(allocations []Allocation, histories map[string][]PricePoint) []PerformanceRecord {
	grouped := make(map[string][]Allocation)
	for _, a := range allocations {
		grouped[a.Ticker] = append(grouped[a.Ticker], a)
	}

	tickers := make([]string, 0, len(grouped))
	for t := range grouped {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	records := make([]PerformanceRecord, 0, len(tickers))
	for _, ticker := range tickers {
		history := histories[ticker]
		if len(history) == 0 {
			continue
		}
		records = append(records, aggregateTicker(ticker, grouped[ticker], history))
	}
	return records
}

func aggregateTicker(ticker string, allocs []Allocation, history []PricePoint) PerformanceRecord {
	totalInvested := decimal.Zero
	for _, a := range allocs {
		totalInvested = totalInvested.Add(a.BuyPrice.Mul(a.Quantity))
	}

	// 每笔持仓只取买入日之后最后一个收盘点计入当前市值
	currentValue := decimal.Zero
	for _, a := range allocs {
		for i := len(history) - 1; i >= 0; i-- {
			if !history[i].Date.Before(a.BuyDate) {
				currentValue = currentValue.Add(history[i].Close.Mul(a.Quantity))
				break
			}
		}
	}

	profitLoss := currentValue.Sub(totalInvested)
	percentageChange := decimal.Zero
	if !totalInvested.IsZero() {
		percentageChange = profitLoss.Div(totalInvested).Mul(oneHundred)
	}

	return PerformanceRecord{
		Ticker:           ticker,
		TotalInvested:    round2(totalInvested),
		CurrentValue:     round2(currentValue),
		ProfitLoss:       round2(profitLoss),
		PercentageChange: round2(percentageChange),
		AvgDailyReturn:   round2(avgDailyReturn(history).Mul(oneHundred)),
		StartDate:        history[0].Date.Format(dateLayout),
		EndDate:          history[len(history)-1].Date.Format(dateLayout),
		PerformanceCurve: buildCurve(allocs, history),
	}
}

// avgDailyReturn 对完整历史（不按买入日过滤）求日间收益的简单算术平均。
// 前一日收盘为 0 时该步收益记 0，避免除零。
func avgDailyReturn(history []PricePoint) decimal.Decimal {
	if len(history) < 2 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Close
		if prev.IsZero() {
			continue
		}
		sum = sum.Add(history[i].Close.Sub(prev).Div(prev))
	}
	return sum.Div(decimal.NewFromInt(int64(len(history) - 1)))
}

// buildCurve 计算按投入市值加权的累计收益率曲线。
// 每个日期只统计买入日不晚于该日的持仓；权重和为 0 时分母取 1。
func buildCurve(allocs []Allocation, history []PricePoint) []CurvePoint {
	curve := make([]CurvePoint, 0, len(history))
	for _, p := range history {
		numerator := decimal.Zero
		weightSum := decimal.Zero
		contributes := false
		for _, a := range allocs {
			if p.Date.Before(a.BuyDate) {
				continue
			}
			contributes = true
			if a.BuyPrice.IsZero() {
				continue
			}
			r := p.Close.Sub(a.BuyPrice).Div(a.BuyPrice).Mul(oneHundred)
			w := a.BuyPrice.Mul(a.Quantity)
			numerator = numerator.Add(r.Mul(w))
			weightSum = weightSum.Add(w)
		}
		if !contributes {
			continue
		}
		if weightSum.IsZero() {
			weightSum = decimal.NewFromInt(1)
		}
		curve = append(curve, CurvePoint{
			Date:                 p.Date.Format(dateLayout),
			AccumulatedReturnPct: round2(numerator.Div(weightSum)),
		})
	}
	return curve
}
