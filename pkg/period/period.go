// Package period turns named reporting periods into concrete date ranges.
package period

import (
	"strings"
	"time"
)

const (
	Today       = "today"
	Yesterday   = "yesterday"
	ThisWeek    = "this-week"
	LastWeek    = "last-week"
	ThisMonth   = "this-month"
	LastMonth   = "last-month"
	ThisQuarter = "this-quarter"
	LastQuarter = "last-quarter"
	ThisYear    = "this-year"
	LastYear    = "last-year"
	Last7Days   = "last-7-days"
	Last30Days  = "last-30-days"
)

const dateLayout = "2006-01-02"

// Range is an inclusive [From, To] interval; From is a start of day and To an end of day.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Resolve maps a period token, or an explicit from/to pair, to a concrete range.
// Both explicit dates must be present to take precedence. Unknown tokens resolve
// to the current month.
func Resolve(token string, from, to *time.Time, now time.Time) Range {
	if from != nil && to != nil {
		return Range{From: StartOfDay(*from), To: EndOfDay(*to)}
	}

	today := StartOfDay(now)
	switch strings.ToLower(strings.TrimSpace(token)) {
	case Today:
		return dayRange(today, today)
	case Yesterday:
		y := today.AddDate(0, 0, -1)
		return dayRange(y, y)
	case ThisWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return dayRange(start, start.AddDate(0, 0, 6))
	case LastWeek:
		start := today.AddDate(0, 0, -int(today.Weekday())-7)
		return dayRange(start, start.AddDate(0, 0, 6))
	case ThisQuarter:
		start := quarterStart(today)
		return dayRange(start, start.AddDate(0, 3, -1))
	case LastQuarter:
		start := quarterStart(today).AddDate(0, -3, 0)
		return dayRange(start, start.AddDate(0, 3, -1))
	case ThisYear:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return dayRange(start, start.AddDate(1, 0, -1))
	case LastYear:
		start := time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, today.Location())
		return dayRange(start, start.AddDate(1, 0, -1))
	case LastMonth:
		start := monthStart(today).AddDate(0, -1, 0)
		return dayRange(start, start.AddDate(0, 1, -1))
	case Last7Days:
		return dayRange(today.AddDate(0, 0, -6), today)
	case Last30Days:
		return dayRange(today.AddDate(0, 0, -29), today)
	default:
		start := monthStart(today)
		return dayRange(start, start.AddDate(0, 1, -1))
	}
}

// LastDays returns the n calendar days ending today.
func LastDays(n int, now time.Time) Range {
	if n < 1 {
		n = 1
	}
	today := StartOfDay(now)
	return dayRange(today.AddDate(0, 0, -(n - 1)), today)
}

// Day returns the single-day range containing t.
func Day(t time.Time) Range {
	d := StartOfDay(t)
	return dayRange(d, d)
}

// Previous returns the range of equal length ending immediately before r.
func (r Range) Previous() Range {
	length := r.To.Sub(r.From)
	to := r.From.Add(-time.Nanosecond)
	return Range{From: to.Add(-length), To: to}
}

// SameRangeLastYear shifts both bounds back one year.
func (r Range) SameRangeLastYear() Range {
	return Range{From: r.From.AddDate(-1, 0, 0), To: r.To.AddDate(-1, 0, 0)}
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Days is the number of calendar days covered.
func (r Range) Days() int {
	return int(StartOfDay(r.To).Sub(StartOfDay(r.From)).Hours()/24) + 1
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDate accepts YYYY-MM-DD or RFC3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func dayRange(from, to time.Time) Range {
	return Range{From: StartOfDay(from), To: EndOfDay(to)}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func quarterStart(t time.Time) time.Time {
	m := (int(t.Month())-1)/3*3 + 1
	return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, t.Location())
}
