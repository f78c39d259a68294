package core

import "time"

// Period tokens accepted by ResolveWindow.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// ResolveWindow maps a symbolic period token to a concrete inclusive range
// ending at now. Unrecognized tokens fall back to the widest possible window
// (epoch..now) instead of failing, so a bad token degrades to "all time".
func ResolveWindow(token string, now time.Time) Window {
	loc := now.Location()
	var start time.Time
	switch token {
	case PeriodWeek:
		// Week starts Monday 00:00; Sunday counts as six days into the week.
		back := (int(now.Weekday()) + 6) % 7
		start = time.Date(now.Year(), now.Month(), now.Day()-back, 0, 0, 0, 0, loc)
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	case PeriodQuarter:
		month := time.Month((int(now.Month())-1)/3*3 + 1)
		start = time.Date(now.Year(), month, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		start = time.Unix(0, 0).In(loc)
	}
	return Window{Start: start, End: now}
}

// RollingWindow returns a window spanning the last days calendar days ending
// at now: the start is the beginning of the day days-1 days back, so the
// window always materializes exactly days daily buckets, today included.
func RollingWindow(days int, now time.Time) Window {
	if days < 1 {
		days = 1
	}
	first := now.AddDate(0, 0, -(days - 1))
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: now}
}
