// Package diff explains the difference between two project documents as a
// list of change events.
package diff

import (
	"fmt"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// Compare returns the change events that lead from oldDoc to newDoc. Either
// document may be nil. revision, when non-empty, is attached to every event
// under the commitHash detail.
//
// Events are produced in two phases: every project_added event in newDoc
// order, then for each project present in both documents its milestone
// events, its status change and its progress change. Milestones that only
// exist in newDoc do not produce an event.
func Compare(newDoc, oldDoc *types.Document, revision string) []types.ChangeEvent {
	var newProjects, oldProjects []types.Project
	if newDoc != nil {
		newProjects = newDoc.Projects
	}
	if oldDoc != nil {
		oldProjects = oldDoc.Projects
	}

	previous := indexProjects(oldProjects)
	events := []types.ChangeEvent{}

	for _, p := range newProjects {
		if _, ok := previous[p.ID]; ok {
			continue
		}
		events = append(events, types.ChangeEvent{
			Kind:        types.ChangeProjectAdded,
			Title:       fmt.Sprintf("%s Added", p.Name),
			Description: fmt.Sprintf("New project %q has been added to the ecosystem", p.Name),
			ProjectID:   p.ID,
			Details:     details(revision),
		})
	}

	for _, p := range newProjects {
		old, ok := previous[p.ID]
		if !ok {
			continue
		}
		events = append(events, compareMilestones(p, old, revision)...)

		if old.Status != p.Status {
			events = append(events, types.ChangeEvent{
				Kind:        types.ChangeUpdated,
				Title:       fmt.Sprintf("%s Status Changed", p.Name),
				Description: fmt.Sprintf("Project status changed from %s to %s", old.Status, p.Status),
				ProjectID:   p.ID,
				Details:     details(revision),
			})
		}
		if old.Progress != p.Progress {
			events = append(events, types.ChangeEvent{
				Kind:        types.ChangeUpdated,
				Title:       fmt.Sprintf("%s Progress Updated", p.Name),
				Description: fmt.Sprintf("Overall progress updated from %d%% to %d%%", old.Progress, p.Progress),
				ProjectID:   p.ID,
				Details:     details(revision),
			})
		}
	}

	return events
}

func compareMilestones(current, old types.Project, revision string) []types.ChangeEvent {
	previous := make(map[string]types.Milestone, len(old.Milestones))
	for _, m := range old.Milestones {
		if _, dup := previous[m.ID]; !dup {
			previous[m.ID] = m
		}
	}

	var events []types.ChangeEvent
	for _, m := range current.Milestones {
		before, ok := previous[m.ID]
		if !ok {
			continue
		}

		// Only transitions into completed or delayed are reported.
		if before.Status != m.Status {
			switch m.Status {
			case types.MilestoneCompleted:
				events = append(events, types.ChangeEvent{
					Kind:        types.ChangeMilestoneCompleted,
					Title:       fmt.Sprintf("%s Completed", m.Title),
					Description: fmt.Sprintf("Milestone %q for %s has been completed", m.Title, current.Name),
					ProjectID:   current.ID,
					MilestoneID: m.ID,
					Details:     details(revision),
				})
			case types.MilestoneDelayed:
				events = append(events, types.ChangeEvent{
					Kind:        types.ChangeMilestoneDelayed,
					Title:       fmt.Sprintf("%s Delayed", m.Title),
					Description: fmt.Sprintf("Milestone %q for %s has been delayed", m.Title, current.Name),
					ProjectID:   current.ID,
					MilestoneID: m.ID,
					Details:     details(revision),
				})
			}
		}

		if before.Progress != m.Progress {
			events = append(events, types.ChangeEvent{
				Kind:        types.ChangeUpdated,
				Title:       fmt.Sprintf("%s Progress Updated", m.Title),
				Description: fmt.Sprintf("Progress updated from %d%% to %d%%", before.Progress, m.Progress),
				ProjectID:   current.ID,
				MilestoneID: m.ID,
				Details:     details(revision),
			})
		}
	}
	return events
}

// indexProjects maps project ids to projects. The first occurrence wins.
func indexProjects(projects []types.Project) map[string]types.Project {
	index := make(map[string]types.Project, len(projects))
	for _, p := range projects {
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = p
		}
	}
	return index
}

func details(revision string) map[string]string {
	if revision == "" {
		return nil
	}
	return map[string]string{types.DetailCommitHash: revision}
}
