package query

import (
	"math"
	"strings"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// ProjectFilter selects projects for the explorer view. Empty fields and All
// match everything.
type ProjectFilter struct {
	// Search is matched case-insensitively against the project name and its
	// next milestone.
	Search   string
	Status   string
	Category string
}

// FilterProjects returns the projects matching f, in their original order.
func FilterProjects(projects []types.Project, f ProjectFilter) []types.Project {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []types.Project{}
	for _, p := range projects {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.NextMilestone), search) {
			continue
		}
		if f.Status != "" && f.Status != All && string(p.Status) != f.Status {
			continue
		}
		if f.Category != "" && f.Category != All && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists the distinct project categories in order of first
// appearance.
func Categories(projects []types.Project) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range projects {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// StatusCounts counts projects per status.
func StatusCounts(projects []types.Project) map[types.ProjectStatus]int {
	counts := map[types.ProjectStatus]int{}
	for _, p := range projects {
		counts[p.Status]++
	}
	return counts
}

// Stats summarizes a document for the dashboard header.
type Stats struct {
	TotalProjects      int `yaml:"totalProjects" json:"totalProjects"`
	OnTrackProjects    int `yaml:"onTrackProjects" json:"onTrackProjects"`
	AtRiskProjects     int `yaml:"atRiskProjects" json:"atRiskProjects"`
	DelayedProjects    int `yaml:"delayedProjects" json:"delayedProjects"`
	CompletedProjects  int `yaml:"completedProjects" json:"completedProjects"`
	UpcomingMilestones int `yaml:"upcomingMilestones" json:"upcomingMilestones"`
	// CompletionRate is the rounded percentage of milestones completed.
	CompletionRate int `yaml:"completionRate" json:"completionRate"`
}

// Summarize computes Stats for doc as of now.
func Summarize(doc *types.Document, now time.Time) Stats {
	if doc == nil {
		return Stats{}
	}
	counts := StatusCounts(doc.Projects)
	entries := Flatten(doc)

	completed := 0
	for _, e := range entries {
		if e.Status == types.MilestoneCompleted {
			completed++
		}
	}
	rate := 0
	if len(entries) > 0 {
		rate = int(math.Round(float64(completed) * 100 / float64(len(entries))))
	}

	return Stats{
		TotalProjects:      len(doc.Projects),
		OnTrackProjects:    counts[types.ProjectOnTrack],
		AtRiskProjects:     counts[types.ProjectAtRisk],
		DelayedProjects:    counts[types.ProjectDelayed],
		CompletedProjects:  counts[types.ProjectCompleted],
		UpcomingMilestones: len(Upcoming(entries, now, -1)),
		CompletionRate:     rate,
	}
}
