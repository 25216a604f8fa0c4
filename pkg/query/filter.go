package query

import (
	"fmt"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// All matches every value of a filter field.
const All = "all"

// Synthetic status filters.
const (
	StatusIncomplete = "incomplete"
	StatusOverdue    = "overdue"
)

// TimeRange restricts milestones by due date relative to the current moment.
type TimeRange string

const (
	RangeAll       TimeRange = "all"
	RangeThisWeek  TimeRange = "this-week"
	RangeThisMonth TimeRange = "this-month"
	RangeNextMonth TimeRange = "next-month"
	RangePastDue   TimeRange = "past-due"
)

// ParseTimeRange validates a time range name. An empty string is RangeAll.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(s); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeThisWeek, RangeThisMonth, RangeNextMonth, RangePastDue:
		return r, nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

// ParseStatus validates a milestone status filter.
func ParseStatus(s string) (string, error) {
	switch s {
	case "", All, StatusIncomplete, StatusOverdue:
		return s, nil
	}
	if types.MilestoneStatus(s).Valid() {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Filter selects milestones. Empty fields behave like All.
type Filter struct {
	// Project is an exact project name.
	Project   string
	Status    string
	TimeRange TimeRange
	// WeekStart is the first day of the week for RangeThisWeek.
	WeekStart time.Weekday
}

// Apply returns the entries matching f, in their original order. Dates are
// interpreted in now's location.
func Apply(entries []Entry, f Filter, now time.Time) []Entry {
	out := []Entry{}
	for _, e := range entries {
		if f.Match(e, now) {
			out = append(out, e)
		}
	}
	return out
}

// Match reports whether e satisfies every field of f.
func (f Filter) Match(e Entry, now time.Time) bool {
	if f.Project != "" && f.Project != All && e.ProjectName != f.Project {
		return false
	}
	if !f.matchStatus(e, now) {
		return false
	}
	return f.matchRange(e, now)
}

func (f Filter) matchStatus(e Entry, now time.Time) bool {
	switch f.Status {
	case "", All:
		return true
	case StatusIncomplete:
		return e.Status == types.MilestoneInProgress || e.Status == types.MilestonePending
	case StatusOverdue:
		return Overdue(e, now)
	default:
		return string(e.Status) == f.Status
	}
}

func (f Filter) matchRange(e Entry, now time.Time) bool {
	if f.TimeRange == "" || f.TimeRange == RangeAll {
		return true
	}
	if f.TimeRange == RangePastDue {
		return Overdue(e, now)
	}

	due, ok := e.Due(now.Location())
	if !ok {
		return false
	}
	var start, end time.Time
	switch f.TimeRange {
	case RangeThisWeek:
		start, end = WeekBounds(now, f.WeekStart)
	case RangeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	case RangeNextMonth:
		start = time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	default:
		return false
	}
	return !due.Before(start) && due.Before(end)
}

// WeekBounds returns the half-open interval of the calendar week containing
// now, starting on weekStart.
func WeekBounds(now time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	today := startOfDay(now)
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	start := today.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
