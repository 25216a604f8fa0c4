package changelog

import (
	"strings"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// Rule classifies a revision message by keywords. A message matches when it
// contains every keyword in All and, if Any is set, at least one keyword in
// Any. Matching is case-insensitive substring matching.
type Rule struct {
	All   []string
	Any   []string
	Kind  types.ChangeKind
	Title string
}

// Matches reports whether message satisfies the rule.
func (r Rule) Matches(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range r.All {
		if !strings.Contains(lower, kw) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	for _, kw := range r.Any {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultRules is the keyword table applied to revision messages.
var DefaultRules = []Rule{
	{
		All:   []string{"milestone"},
		Any:   []string{"complet", "finish"},
		Kind:  types.ChangeMilestoneCompleted,
		Title: "Milestone Completed",
	},
	{
		All:   []string{"project"},
		Any:   []string{"add", "new"},
		Kind:  types.ChangeProjectAdded,
		Title: "New Project Added",
	},
	{
		Any:   []string{"delay", "postpone"},
		Kind:  types.ChangeMilestoneDelayed,
		Title: "Milestone Delayed",
	},
}

// Classify returns the kinds of every rule matching message, in rule order.
func Classify(message string, rules []Rule) []types.ChangeKind {
	var kinds []types.ChangeKind
	for _, r := range rules {
		if r.Matches(message) {
			kinds = append(kinds, r.Kind)
		}
	}
	return kinds
}

// ClassifyRevision builds one event per rule matching the revision message.
func ClassifyRevision(rev types.Revision, rules []Rule) []types.ChangeEvent {
	var events []types.ChangeEvent
	for _, r := range rules {
		if !r.Matches(rev.Message) {
			continue
		}
		events = append(events, types.ChangeEvent{
			Kind:        r.Kind,
			Title:       r.Title,
			Description: rev.Message,
			Details:     map[string]string{types.DetailCommitHash: rev.ShortSHA()},
		})
	}
	return events
}
