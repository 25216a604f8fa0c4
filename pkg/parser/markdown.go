// Package parser turns a milestones.md document into milestone records.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

var (
	dueDatePattern   = regexp.MustCompile(`(?i)due[:\s]+(\d{4}-\d{2}-\d{2})`)
	percentPattern   = regexp.MustCompile(`(\d+)%`)
	linkPattern      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	githubPattern    = regexp.MustCompile(`(?i)github[:\s]+(\S+)`)
	githubURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)
)

// Status and grant markers used in milestone documents.
const (
	markDone     = "\u2705"
	markBuilding = "\U0001F6A7"
	markWarning  = "\u26a0"
	markMoney    = "\U0001F4B0"
)

// draft is the milestone being accumulated between two headings.
type draft struct {
	m          types.Milestone
	definition []string
	desc       []string
}

// ParseMilestones scans content line by line and returns one milestone per
// level-2 or level-3 heading. Text before the first heading is ignored and
// malformed input never fails: unmatched lines are skipped.
func ParseMilestones(content, projectID string) []types.Milestone {
	var (
		milestones []types.Milestone
		current    *draft
		section    string
	)

	flush := func() {
		if current != nil && current.m.Title != "" {
			milestones = append(milestones, complete(current, projectID, len(milestones)))
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ") {
			flush()
			current = &draft{m: types.Milestone{
				Title:  strings.TrimSpace(strings.TrimLeft(line, "#")),
				Status: types.MilestonePending,
			}}
			section = ""
			continue
		}
		if current == nil {
			continue
		}

		scanLine(current, line, &section)
	}
	flush()

	if milestones == nil {
		return []types.Milestone{}
	}
	return milestones
}

func scanLine(d *draft, line string, section *string) {
	lower := strings.ToLower(line)

	switch {
	case strings.Contains(line, markDone) || strings.Contains(lower, "completed"):
		d.m.Status = types.MilestoneCompleted
		d.m.Progress = 100
	case strings.Contains(line, markBuilding) || strings.Contains(lower, "in progress") || strings.Contains(lower, "in-progress"):
		d.m.Status = types.MilestoneInProgress
	case strings.Contains(line, markWarning) || strings.Contains(lower, "delayed"):
		d.m.Status = types.MilestoneDelayed
	}

	if match := dueDatePattern.FindStringSubmatch(line); match != nil {
		d.m.DueDate = match[1]
	}

	if match := percentPattern.FindStringSubmatch(line); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			d.m.Progress = types.ClampProgress(n)
		}
	}

	if strings.Contains(lower, "grant milestone") || strings.Contains(line, markMoney) {
		d.m.IsGrantMilestone = true
	}

	if strings.HasPrefix(line, "**") || strings.HasPrefix(line, "###") {
		*section = lower
	}

	body := line != "" && !strings.HasPrefix(line, "**") && !strings.HasPrefix(line, "#")
	if body && strings.Contains(*section, "description") {
		d.desc = append(d.desc, line)
	}
	if body && (strings.Contains(*section, "definition") || strings.Contains(*section, "done") || strings.Contains(*section, "acceptance")) {
		d.definition = append(d.definition, line)
	}
	if strings.Contains(*section, "dependencies") || strings.Contains(*section, "depends") {
		if strings.HasPrefix(line, "- ") {
			d.m.Dependencies = append(d.m.Dependencies, line[2:])
		}
	}

	for _, match := range linkPattern.FindAllStringSubmatch(line, -1) {
		setLink(&d.m, strings.ToLower(match[1]), match[2])
	}
	if match := githubPattern.FindStringSubmatch(line); match != nil {
		setLink(&d.m, types.LinkGitHub, match[1])
	}
}

func setLink(m *types.Milestone, key, url string) {
	if m.Links == nil {
		m.Links = map[string]string{}
	}
	m.Links[key] = url
}

// complete fills every default so callers never see a partial record.
func complete(d *draft, projectID string, index int) types.Milestone {
	m := d.m
	if m.ID == "" {
		m.ID = types.MilestoneID(projectID, index)
	}
	if m.Status == "" {
		m.Status = types.MilestonePending
	}
	m.Progress = types.ClampProgress(m.Progress)
	m.Description = strings.TrimSpace(strings.Join(d.desc, " "))
	m.DefinitionOfDone = strings.TrimSpace(strings.Join(d.definition, " "))
	if m.Dependencies == nil {
		m.Dependencies = []string{}
	}
	if m.Links == nil {
		m.Links = map[string]string{}
	}
	return m
}

// ParseGitHubURL extracts the owner and repository name from a GitHub URL.
func ParseGitHubURL(url string) (owner, repo string, ok bool) {
	match := githubURLPattern.FindStringSubmatch(url)
	if match == nil {
		return "", "", false
	}
	return match[1], strings.TrimSuffix(match[2], ".git"), true
}
