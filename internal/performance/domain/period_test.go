package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-13 是周三
var wednesday = time.Date(2024, time.March, 13, 15, 4, 5, 0, time.UTC)

func TestWindowAnnual(t *testing.T) {
	start, end, err := Window(PeriodAnnual, 2024, 0, wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), end)
}

func TestWindowSemiannual(t *testing.T) {
	start, _, err := Window(PeriodSemiannual, 2024, 3, wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), start)

	start, _, err = Window(PeriodSemiannual, 2024, 9, wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowMonthlyIsPriorMonth(t *testing.T) {
	start, _, err := Window(PeriodMonthly, 2024, 3, wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowMonthlyJanuaryRollsToPriorDecember(t *testing.T) {
	start, _, err := Window(PeriodMonthly, 2024, 1, wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowWeeklyMostRecentMonday(t *testing.T) {
	start, end, err := Window(PeriodWeekly, 2024, 3, wednesday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), end)
}

func TestWindowWeeklyOnMonday(t *testing.T) {
	monday := time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
	start, _, err := Window(PeriodWeekly, 2024, 3, monday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestWindowMonthRequired(t *testing.T) {
	for _, period := range []Period{PeriodSemiannual, PeriodMonthly, PeriodWeekly} {
		_, _, err := Window(period, 2024, 0, wednesday)
		assert.ErrorIs(t, err, ErrMonthRequired, "period %s", period)
	}
}

func TestWindowAnnualIgnoresMonth(t *testing.T) {
	_, _, err := Window(PeriodAnnual, 2024, 0, wednesday)
	assert.NoError(t, err)
}

func TestWindowInvalidPeriod(t *testing.T) {
	_, _, err := Window("quarterly", 2024, 3, wednesday)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
