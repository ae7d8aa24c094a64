package domain

import (
	"errors"
	"fmt"
	"time"
)

// Period 统计周期标签
type Period string

const (
	PeriodAnnual     Period = "annual"
	PeriodSemiannual Period = "semiannual"
	PeriodMonthly    Period = "monthly"
	PeriodWeekly     Period = "weekly"
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrMonthRequired = errors.New("month is required for this period")
)

// Window 按周期标签解析统计窗口 [start, end]，end 恒为 now 所在日。
// month 为 0 表示未提供；annual 以外的周期都要求提供 month。
func Window(period Period, year, month int, now time.Time) (start, end time.Time, err error) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodAnnual:
		start = time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	case PeriodSemiannual:
		if err = requireMonth(month); err != nil {
			return time.Time{}, time.Time{}, err
		}
		if month <= 6 {
			start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		} else {
			start = time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
		}
	case PeriodMonthly:
		if err = requireMonth(month); err != nil {
			return time.Time{}, time.Time{}, err
		}
		// 上一个自然月的首日；month=1 时 time.Date 归一化为上一年 12 月
		start = time.Date(year, time.Month(month-1), 1, 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		// month 不参与计算，但与其它周期保持同样的入参校验
		if err = requireMonth(month); err != nil {
			return time.Time{}, time.Time{}, err
		}
		offset := (int(end.Weekday()) + 6) % 7
		start = end.AddDate(0, 0, -offset)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return start, end, nil
}

func requireMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrMonthRequired
	}
	return nil
}
