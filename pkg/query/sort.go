package query

import (
	"sort"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// SortByDue returns a copy of entries ordered by due date ascending. Entries
// without a valid due date keep their relative order at the end.
func SortByDue(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		di, iok := out[i].Due(time.UTC)
		dj, jok := out[j].Due(time.UTC)
		if iok != jok {
			return iok
		}
		return iok && di.Before(dj)
	})
	return out
}

// Upcoming returns at most n incomplete entries due today or later, soonest
// first. A negative n returns them all.
func Upcoming(entries []Entry, now time.Time, n int) []Entry {
	today := startOfDay(now)
	var pending []Entry
	for _, e := range entries {
		if e.Status == types.MilestoneCompleted {
			continue
		}
		if due, ok := e.Due(now.Location()); ok && !due.Before(today) {
			pending = append(pending, e)
		}
	}
	sorted := SortByDue(pending)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ForDate returns the entries due on the calendar day of day.
func ForDate(entries []Entry, day time.Time) []Entry {
	key := day.Format(types.DateLayout)
	out := []Entry{}
	for _, e := range entries {
		if due, ok := e.Due(day.Location()); ok && due.Format(types.DateLayout) == key {
			out = append(out, e)
		}
	}
	return out
}
