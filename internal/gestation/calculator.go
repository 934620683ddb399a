// Package gestation converts a due date into gestational week, month and
// trimester, and holds the static milestone and development tables.
package gestation

import (
	"math"
	"time"
)

const (
	// GestationDays is the fixed 40-week term assumed for every pregnancy.
	GestationDays = 280
	TermWeeks     = 40
	MinMonth      = 1
	MaxMonth      = 9
)

// Snapshot is recomputed on every read and never stored.
type Snapshot struct {
	Tracking       bool       `json:"tracking"`
	DueDate        *time.Time `json:"due_date"`
	ConceptionDate *time.Time `json:"conception_date"`

	Week           int `json:"gestational_week"`
	Month          int `json:"gestational_month"`
	WeekBasedMonth int `json:"week_based_month"`
	Trimester      int `json:"trimester"`
	RemainingWeeks int `json:"remaining_weeks"`
	Progress       int `json:"progress_percentage"`

	NextMilestone           *Milestone `json:"next_milestone"`
	WeeksUntilNextMilestone int        `json:"weeks_until_next_milestone"`
}

// Compute derives a snapshot from dueDate as seen at now. A nil dueDate
// yields the "not yet tracking" snapshot pinned to month 1, week 0.
func Compute(dueDate *time.Time, now time.Time) Snapshot {
	if dueDate == nil {
		return snapshotForWeek(Snapshot{Month: MinMonth}, 0)
	}

	due := civilDay(*dueDate)
	conception := due.AddDate(0, 0, -GestationDays)
	today := civilDay(now)

	s := Snapshot{
		Tracking:       true,
		DueDate:        &due,
		ConceptionDate: &conception,
		Month:          CalendarMonth(conception, today),
	}
	return snapshotForWeek(s, ElapsedWeeks(conception, today))
}

func snapshotForWeek(s Snapshot, week int) Snapshot {
	s.Week = week
	s.WeekBasedMonth = MonthFromWeek(week)
	s.Trimester = Trimester(week)
	s.RemainingWeeks = max(0, TermWeeks-week)
	s.Progress = min(100, int(math.Round(float64(week)/TermWeeks*100)))

	if m, ok := NextMilestone(week); ok {
		s.NextMilestone = &m
		s.WeeksUntilNextMilestone = m.Week - week
	}
	return s
}

// ElapsedWeeks counts whole weeks from conception to today, never negative.
func ElapsedWeeks(conception, today time.Time) int {
	days := int(civilDay(today).Sub(civilDay(conception)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 7
}

// CalendarMonth counts calendar-month boundaries crossed since conception,
// plus one, clamped into [1,9]. It is not elapsed days divided by 30.
func CalendarMonth(conception, today time.Time) int {
	elapsed := (today.Year()*12 + int(today.Month())) - (conception.Year()*12 + int(conception.Month()))
	return ClampMonth(elapsed + 1)
}

// MonthFromWeek maps a week onto the timeline's four-week month buckets.
func MonthFromWeek(week int) int {
	return ClampMonth((week + 3) / 4)
}

func Trimester(week int) int {
	switch {
	case week <= 12:
		return 1
	case week <= 28:
		return 2
	default:
		return 3
	}
}

func ClampMonth(month int) int {
	return min(MaxMonth, max(MinMonth, month))
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
