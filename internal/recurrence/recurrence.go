// Package recurrence interprets the repeat interval of a task template.
package recurrence

import (
	"fmt"
	"strings"
	"time"
)

type Freq string

const (
	None    Freq = "none"
	Daily   Freq = "daily"
	Weekly  Freq = "weekly"
	Monthly Freq = "monthly"
)

// Parse accepts a frequency name, case-insensitive.
func Parse(s string) (Freq, error) {
	f := Freq(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case None, Daily, Weekly, Monthly:
		return f, nil
	}
	return "", fmt.Errorf("unknown recurrence %q", s)
}

// Due returns the deadline of a task instantiated at t: the start of the day
// that follows the current period, in t's location. None has no deadline.
func (f Freq) Due(t time.Time) *time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	var due time.Time
	switch f {
	case Daily:
		due = day.AddDate(0, 0, 1)
	case Weekly:
		due = day.AddDate(0, 0, 7)
	case Monthly:
		due = addMonth(day)
	default:
		return nil
	}
	return &due
}

// addMonth moves to the same day next month, clamped to that month's last day.
func addMonth(day time.Time) time.Time {
	year, month := day.Year(), day.Month()+1
	if month > time.December {
		year, month = year+1, time.January
	}
	d := min(day.Day(), daysInMonth(year, month))
	return time.Date(year, month, d, 0, 0, 0, 0, day.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (f Freq) Describe() string {
	switch f {
	case Daily:
		return "every day"
	case Weekly:
		return "every week"
	case Monthly:
		return "every month"
	}
	return "once"
}
