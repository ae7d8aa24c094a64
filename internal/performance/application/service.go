package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	allocdomain "github.com/wyfcoding/portfoliotracker/internal/allocation/domain"
	assetdomain "github.com/wyfcoding/portfoliotracker/internal/asset/domain"
	mddomain "github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
	"github.com/wyfcoding/portfoliotracker/internal/performance/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/logger"
)

// AllocationStore 绩效计算需要的持仓读取能力
type AllocationStore interface {
	ListActiveByClient(ctx context.Context, clientID uint) ([]allocdomain.WithTicker, error)
}

// ReturnStore 日收盘历史读取能力
type ReturnStore interface {
	ByAsset(ctx context.Context, assetID uint) ([]mddomain.DailyReturn, error)
	ByAssetBetween(ctx context.Context, assetID uint, from, to time.Time) ([]mddomain.DailyReturn, error)
}

// QuoteCatalog 行情与持仓汇总查询，由资产上下文提供
type QuoteCatalog interface {
	Get(ctx context.Context, id uint) (*assetdomain.Asset, error)
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	ListHoldingsByClient(ctx context.Context, clientID uint) ([]assetdomain.Holding, error)
}

// PeriodCapture 周期资金对比结果
type PeriodCapture struct {
	Captured      decimal.Decimal `json:"captured"`
	Current       decimal.Decimal `json:"current"`
	Profitability decimal.Decimal `json:"profitability"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
}

type PerformanceService struct {
	allocations AllocationStore
	returns     ReturnStore
	quotes      QuoteCatalog
	concurrency int
	now         func() time.Time
}

func NewPerformanceService(allocations AllocationStore, returns ReturnStore, quotes QuoteCatalog, concurrency int) *PerformanceService {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &PerformanceService{
		allocations: allocations,
		returns:     returns,
		quotes:      quotes,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// ClientPerformance 计算一个客户按资产代码合并的绩效记录。
// 无历史数据的资产被静默跳过。
func (s *PerformanceService) ClientPerformance(ctx context.Context, clientID uint) ([]domain.PerformanceRecord, error) {
	allocs, err := s.allocations.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}

	inputs := make([]domain.Allocation, 0, len(allocs))
	histories := make(map[string][]domain.PricePoint)
	for _, a := range allocs {
		inputs = append(inputs, domain.Allocation{
			Ticker:   a.Ticker,
			Quantity: a.Quantity,
			BuyPrice: a.BuyPrice,
			BuyDate:  a.BuyDate,
		})
		if _, ok := histories[a.Ticker]; ok {
			continue
		}
		rows, err := s.returns.ByAsset(ctx, a.AssetID)
		if err != nil {
			return nil, fmt.Errorf("load history for asset %d: %w", a.AssetID, err)
		}
		points := make([]domain.PricePoint, 0, len(rows))
		for _, r := range rows {
			points = append(points, domain.PricePoint{Date: r.Date, Close: r.ClosePrice})
		}
		histories[a.Ticker] = points
	}

	return domain.Aggregate(inputs, histories), nil
}

// CapturedByPeriod 计算窗口内累计沉淀值、当前市值与盈利率。
// captured 按窗口内每个交易日累加（同一持仓在窗口内每日各计一次）。
func (s *PerformanceService) CapturedByPeriod(ctx context.Context, clientID uint, period domain.Period, year, month int) (*PeriodCapture, error) {
	start, end, err := domain.Window(period, year, month, s.now())
	if err != nil {
		return nil, err
	}

	allocs, err := s.allocations.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}

	captured := decimal.Zero
	for _, a := range allocs {
		if a.BuyDate.After(end) {
			continue
		}
		rows, err := s.returns.ByAssetBetween(ctx, a.AssetID, start, end)
		if err != nil {
			return nil, fmt.Errorf("load history for asset %d: %w", a.AssetID, err)
		}
		for _, r := range rows {
			captured = captured.Add(r.ClosePrice.Mul(a.Quantity))
		}
	}

	current, err := s.currentValue(ctx, clientID)
	if err != nil {
		return nil, err
	}

	profitability := decimal.Zero
	if !captured.IsZero() {
		profitability = current.Sub(captured).Div(captured).Mul(decimal.NewFromInt(100))
	}

	return &PeriodCapture{
		Captured:      captured.Round(2),
		Current:       current.Round(2),
		Profitability: profitability.Round(2),
		StartDate:     start.Format("2006-01-02"),
		EndDate:       end.Format("2006-01-02"),
	}, nil
}

// AssetMetrics 针对单一资产的一笔（可能是假设的）买入计算绩效记录。
// buyDate 为空时从历史首日起算。资产无历史数据返回 ErrNoPriceData。
func (s *PerformanceService) AssetMetrics(ctx context.Context, assetID uint, buyPrice, quantity decimal.Decimal, buyDate *time.Time) (*domain.PerformanceRecord, error) {
	asset, err := s.quotes.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	rows, err := s.returns.ByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("load history for asset %d: %w", assetID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for %s", assetdomain.ErrNoPriceData, asset.Ticker)
	}

	points := make([]domain.PricePoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.PricePoint{Date: r.Date, Close: r.ClosePrice})
	}

	from := points[0].Date
	if buyDate != nil {
		from = *buyDate
	}
	records := domain.Aggregate(
		[]domain.Allocation{{Ticker: asset.Ticker, Quantity: quantity, BuyPrice: buyPrice, BuyDate: from}},
		map[string][]domain.PricePoint{asset.Ticker: points},
	)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w for %s", assetdomain.ErrNoPriceData, asset.Ticker)
	}
	return &records[0], nil
}

// currentValue 并发拉取客户持仓的实时行情并按数量加权求和。
// 单个代码查询失败只记日志并跳过，不影响其余代码。
func (s *PerformanceService) currentValue(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	holdings, err := s.quotes.ListHoldingsByClient(ctx, clientID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list holdings: %w", err)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		total = decimal.Zero
		sem   = make(chan struct{}, s.concurrency)
	)
	for _, h := range holdings {
		wg.Add(1)
		sem <- struct{}{}
		go func(h assetdomain.Holding) {
			defer wg.Done()
			defer func() { <-sem }()
			price, err := s.quotes.GetPrice(ctx, h.Ticker)
			if err != nil {
				logger.Warn(ctx, "quote lookup failed, holding skipped", "ticker", h.Ticker, "error", err)
				return
			}
			mu.Lock()
			total = total.Add(price.Mul(h.Quantity))
			mu.Unlock()
		}(h)
	}
	wg.Wait()
	return total, nil
}

// ExportCSV 将客户绩效记录写成 CSV，曲线不展开，只导出汇总指标。
func (s *PerformanceService) ExportCSV(ctx context.Context, clientID uint, w io.Writer) error {
	records, err := s.ClientPerformance(ctx, clientID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"ticker", "total_invested", "current_value", "profit_loss", "percentage_change", "avg_daily_return", "start_date", "end_date"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Ticker,
			r.TotalInvested.StringFixed(2),
			r.CurrentValue.StringFixed(2),
			r.ProfitLoss.StringFixed(2),
			r.PercentageChange.StringFixed(2),
			r.AvgDailyReturn.StringFixed(2),
			r.StartDate,
			r.EndDate,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
