package query

import (
	"fmt"
	"sort"
	"time"
)

// MonthKey is the year-month label of t without zero padding, e.g. "2024-3".
// Such keys do not sort chronologically as strings; use GroupByMonth for
// ordering.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), int(t.Month()))
}

// PaddedMonthKey is the zero-padded year-month label of t, e.g. "2024-03".
func PaddedMonthKey(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

// MonthGroup holds the entries due in one calendar month.
type MonthGroup struct {
	Key     string     `yaml:"key" json:"key"`
	Year    int        `yaml:"year" json:"year"`
	Month   time.Month `yaml:"month" json:"month"`
	Entries []Entry    `yaml:"entries" json:"entries"`
}

// GroupByMonth buckets dated entries by the month of their due date. Groups
// are ordered by year then month; entries keep their relative order. Undated
// entries are left out.
func GroupByMonth(entries []Entry, loc *time.Location) []MonthGroup {
	index := map[string]int{}
	groups := []MonthGroup{}
	for _, e := range entries {
		due, ok := e.Due(loc)
		if !ok {
			continue
		}
		key := MonthKey(due)
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Key: key, Year: due.Year(), Month: due.Month()})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year < groups[j].Year
		}
		return groups[i].Month < groups[j].Month
	})
	return groups
}

// GroupByProject buckets entries by project id, in order of first appearance.
func GroupByProject(entries []Entry) ([]string, map[string][]Entry) {
	var order []string
	groups := map[string][]Entry{}
	for _, e := range entries {
		if _, ok := groups[e.ProjectID]; !ok {
			order = append(order, e.ProjectID)
		}
		groups[e.ProjectID] = append(groups[e.ProjectID], e)
	}
	return order, groups
}
