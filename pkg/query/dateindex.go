package query

import (
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// DateCount is the number of entries due on one day.
type DateCount struct {
	Count int       `yaml:"count" json:"count"`
	Date  time.Time `yaml:"date" json:"date"`
}

// DateIndex maps a YYYY-MM-DD day to the entries due on it.
type DateIndex map[string]DateCount

// BuildDateIndex counts dated entries per due day in loc.
func BuildDateIndex(entries []Entry, loc *time.Location) DateIndex {
	idx := DateIndex{}
	for _, e := range entries {
		due, ok := e.Due(loc)
		if !ok {
			continue
		}
		key := due.Format(types.DateLayout)
		dc := idx[key]
		if dc.Count == 0 {
			dc.Date = due
		}
		dc.Count++
		idx[key] = dc
	}
	return idx
}

// Has reports whether any entry is due on the calendar day of day.
func (idx DateIndex) Has(day time.Time) bool {
	return idx.Count(day) > 0
}

// Count returns the number of entries due on the calendar day of day.
func (idx DateIndex) Count(day time.Time) int {
	return idx[day.Format(types.DateLayout)].Count
}
