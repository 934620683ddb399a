package gestation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()
	day, err := time.Parse("2006-01-02", raw)
	require.NoError(t, err)
	return day
}

func TestCompute_DueDateScenario(t *testing.T) {
	t.Parallel()

	due := mustParseDay(t, "2025-06-01")
	s := Compute(&due, mustParseDay(t, "2025-01-01"))

	require.True(t, s.Tracking)
	require.NotNil(t, s.ConceptionDate)
	assert.Equal(t, "2024-08-25", s.ConceptionDate.Format("2006-01-02"))
	assert.Equal(t, 18, s.Week)
	assert.Equal(t, 6, s.Month)
	assert.Equal(t, 5, s.WeekBasedMonth)
	assert.Equal(t, 2, s.Trimester)
	assert.Equal(t, 22, s.RemainingWeeks)
	assert.Equal(t, 45, s.Progress)
	require.NotNil(t, s.NextMilestone)
	assert.Equal(t, 20, s.NextMilestone.Week)
	assert.Equal(t, 2, s.WeeksUntilNextMilestone)
}

func TestCompute_NoDueDateIsSentinel(t *testing.T) {
	t.Parallel()

	for _, now := range []time.Time{
		time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 14, 18, 30, 0, 0, time.UTC),
		time.Date(2100, 12, 31, 23, 59, 0, 0, time.UTC),
	} {
		s := Compute(nil, now)
		assert.False(t, s.Tracking)
		assert.Equal(t, 1, s.Month)
		assert.Equal(t, 0, s.Week)
		assert.Equal(t, 1, s.Trimester)
		assert.Equal(t, 40, s.RemainingWeeks)
		assert.Equal(t, 0, s.Progress)
		require.NotNil(t, s.NextMilestone)
		assert.Equal(t, 8, s.NextMilestone.Week)
		assert.Nil(t, s.DueDate)
	}
}

func TestCompute_MonthStaysInRangeAndNeverDecreases(t *testing.T) {
	t.Parallel()

	due := mustParseDay(t, "2026-03-15")
	start := due.AddDate(0, 0, -GestationDays)

	prev := Compute(&due, start)
	for day := 1; day <= 400; day++ {
		s := Compute(&due, start.AddDate(0, 0, day))
		if s.Month < MinMonth || s.Month > MaxMonth {
			t.Fatalf("day %d: month %d out of range", day, s.Month)
		}
		if s.Month < prev.Month {
			t.Fatalf("day %d: month decreased from %d to %d", day, prev.Month, s.Month)
		}
		if s.Week < prev.Week {
			t.Fatalf("day %d: week decreased from %d to %d", day, prev.Week, s.Week)
		}
		prev = s
	}
	assert.Equal(t, MaxMonth, prev.Month)
}

func TestCompute_BeforeConceptionClampsToStart(t *testing.T) {
	t.Parallel()

	due := mustParseDay(t, "2026-03-15")
	s := Compute(&due, mustParseDay(t, "2025-01-01"))

	assert.Equal(t, 0, s.Week)
	assert.Equal(t, 1, s.Month)
	assert.Equal(t, 1, s.Trimester)
}

func TestCompute_PastDueDate(t *testing.T) {
	t.Parallel()

	due := mustParseDay(t, "2025-06-01")
	s := Compute(&due, mustParseDay(t, "2025-06-20"))

	assert.Equal(t, 42, s.Week)
	assert.Equal(t, 9, s.Month)
	assert.Equal(t, 0, s.RemainingWeeks)
	assert.Equal(t, 100, s.Progress)
	assert.Nil(t, s.NextMilestone)
}

func TestCompute_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	morning := Compute(&due, time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC))
	evening := Compute(&due, time.Date(2025, 1, 1, 23, 55, 0, 0, time.UTC))

	assert.Equal(t, morning, evening)
}

func TestWeekAndMonthAreIndependent(t *testing.T) {
	t.Parallel()

	// conception 2024-08-31: one day later the calendar month has already ticked
	due := mustParseDay(t, "2025-06-07")
	s := Compute(&due, mustParseDay(t, "2024-09-01"))

	assert.Equal(t, 0, s.Week)
	assert.Equal(t, 2, s.Month)
	assert.NotEqual(t, s.Month*4, s.Week)
}

func TestTrimester(t *testing.T) {
	t.Parallel()

	cases := []struct {
		week int
		want int
	}{
		{0, 1}, {12, 1}, {13, 2}, {28, 2}, {29, 3}, {45, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Trimester(tc.week), "week %d", tc.week)
	}
}

func TestMonthFromWeek(t *testing.T) {
	t.Parallel()

	cases := []struct {
		week int
		want int
	}{
		{0, 1}, {1, 1}, {4, 1}, {5, 2}, {8, 2}, {18, 5}, {36, 9}, {41, 9},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MonthFromWeek(tc.week), "week %d", tc.week)
	}
}
