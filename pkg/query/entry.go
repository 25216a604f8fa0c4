// Package query filters, sorts and groups the milestones of a projects
// document for calendar and list views. Every function returns a new slice
// and leaves its input untouched.
package query

import (
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// Entry is a milestone annotated with its owning project.
type Entry struct {
	types.Milestone `yaml:",inline"`

	ProjectID   string `yaml:"projectId" json:"projectId"`
	ProjectName string `yaml:"projectName" json:"projectName"`
	Category    string `yaml:"category" json:"category"`
}

// Flatten lists every milestone of doc in document order.
func Flatten(doc *types.Document) []Entry {
	entries := []Entry{}
	if doc == nil {
		return entries
	}
	for _, p := range doc.Projects {
		for _, m := range p.Milestones {
			entries = append(entries, Entry{
				Milestone:   m,
				ProjectID:   p.ID,
				ProjectName: p.Name,
				Category:    p.Category,
			})
		}
	}
	return entries
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Overdue reports whether e is due strictly before now and not completed.
// Undated milestones are never overdue.
func Overdue(e Entry, now time.Time) bool {
	due, ok := e.Due(now.Location())
	if !ok {
		return false
	}
	return due.Before(now) && e.Status != types.MilestoneCompleted
}
