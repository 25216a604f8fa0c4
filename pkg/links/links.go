// Package links builds pre-filled GitHub URLs for proposing data changes and
// filing milestone issues.
package links

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// Builder targets one repository.
type Builder struct {
	Owner      string
	Repo       string
	BaseBranch string
}

// New returns a Builder proposing changes against main.
func New(owner, repo string) Builder {
	return Builder{Owner: owner, Repo: repo, BaseBranch: "main"}
}

func (b Builder) repoURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", b.Owner, b.Repo)
}

// ProposalURL opens a pull request comparing a fresh update branch for p.
func (b Builder) ProposalURL(p types.Project, now time.Time) string {
	branch := fmt.Sprintf("update-%s-%d", p.ID, now.UnixMilli())
	title := fmt.Sprintf("Update %s milestone data", p.Name)
	body := fmt.Sprintf(`## Project Update

**Project:** %s
**Status:** %s
**Next Milestone:** %s
**Due Date:** %s

### Changes Made:
- Updated milestone information
- Modified project status

### Verification:
- [ ] Data format is correct
- [ ] All required fields are present
- [ ] Dates are in ISO format`, p.Name, p.Status, p.NextMilestone, p.DueDate)

	q := url.Values{}
	q.Set("quick_pull", "1")
	q.Set("title", title)
	q.Set("body", body)
	return fmt.Sprintf("%s/compare/%s...%s?%s", b.repoURL(), b.BaseBranch, branch, q.Encode())
}

// IssueURL opens a new issue describing m, labelled for its project.
func (b Builder) IssueURL(projectID string, m types.Milestone) string {
	description := m.Description
	if description == "" {
		description = "No description provided"
	}
	deps := "No dependencies"
	if len(m.Dependencies) > 0 {
		lines := make([]string, len(m.Dependencies))
		for i, d := range m.Dependencies {
			lines[i] = "- " + d
		}
		deps = strings.Join(lines, "\n")
	}

	title := fmt.Sprintf("[%s] Milestone: %s", projectID, m.Title)
	body := fmt.Sprintf(`## Milestone Details

**Project:** %s
**Milestone:** %s
**Due Date:** %s
**Status:** %s

### Description
%s

### Acceptance Criteria
- [ ] Deliverable 1
- [ ] Deliverable 2
- [ ] Deliverable 3

### Dependencies
%s`, projectID, m.Title, m.DueDate, m.Status, description, deps)

	q := url.Values{}
	q.Set("title", title)
	q.Set("body", body)
	q.Set("labels", "milestone,"+projectID)
	return b.repoURL() + "/issues/new?" + q.Encode()
}
