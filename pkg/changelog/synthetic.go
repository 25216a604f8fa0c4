package changelog

import (
	"fmt"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/google/uuid"
)

// RecentWindow is how far back a completed milestone counts as recent.
const RecentWindow = 7 * 24 * time.Hour

// Recent derives entries from the current document alone: one bundling
// milestones completed with a due date in the trailing week, one bundling
// milestones that are past due and not completed. Empty bundles are omitted.
// Both entries are dated now.
func Recent(doc *types.Document, now time.Time) []types.ChangelogEntry {
	if doc == nil {
		return []types.ChangelogEntry{}
	}

	var completed, delayed []types.ChangeEvent
	windowStart := now.Add(-RecentWindow)
	for _, p := range doc.Projects {
		for _, m := range p.Milestones {
			due, ok := m.Due(now.Location())
			if !ok {
				continue
			}
			switch {
			case m.Status == types.MilestoneCompleted:
				if !due.Before(windowStart) && !due.After(now) {
					completed = append(completed, types.ChangeEvent{
						Kind:        types.ChangeMilestoneCompleted,
						Title:       fmt.Sprintf("%s Completed", m.Title),
						Description: fmt.Sprintf("Milestone %q for %s was completed", m.Title, p.Name),
						ProjectID:   p.ID,
						MilestoneID: m.ID,
					})
				}
			case due.Before(now):
				delayed = append(delayed, types.ChangeEvent{
					Kind:        types.ChangeMilestoneDelayed,
					Title:       fmt.Sprintf("%s Overdue", m.Title),
					Description: fmt.Sprintf("Milestone %q for %s was due %s and is %s", m.Title, p.Name, m.DueDate, m.Status),
					ProjectID:   p.ID,
					MilestoneID: m.ID,
				})
			}
		}
	}

	entries := []types.ChangelogEntry{}
	if len(completed) > 0 {
		entries = append(entries, syntheticEntry("recently-completed", now, completed))
	}
	if len(delayed) > 0 {
		entries = append(entries, syntheticEntry("delayed", now, delayed))
	}
	return entries
}

// syntheticEntry ids are stable for a given kind and day.
func syntheticEntry(kind string, now time.Time, events []types.ChangeEvent) types.ChangelogEntry {
	day := now.Format(types.DateLayout)
	return types.ChangelogEntry{
		ID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+day)).String(),
		Date:    now,
		Version: now.Format(VersionDateLayout),
		Changes: events,
	}
}

// Fallback is the fixed changelog served when no history can be retrieved.
func Fallback(now time.Time) []types.ChangelogEntry {
	return []types.ChangelogEntry{
		{
			ID:      "mock-1",
			Date:    now,
			Version: "2024.07.02",
			Changes: []types.ChangeEvent{
				{
					Kind:        types.ChangeMilestoneCompleted,
					Title:       "Omnibridge Testnet Launch Completed",
					Description: "Successfully deployed Omnibridge on testnet with comprehensive testing completed",
					ProjectID:   "omnibridge",
					MilestoneID: "omnibridge-m4",
				},
				{
					Kind:        types.ChangeUpdated,
					Title:       "Project Progress Updated",
					Description: "Updated progress tracking for multiple projects based on latest developments",
				},
			},
			CommitHash:    "abc123f",
			CommitMessage: "Update milestone progress and project status",
			Author:        "NEAR Team",
		},
	}
}
