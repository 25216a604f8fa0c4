package types

import "time"

// ChangeKind classifies a change event.
type ChangeKind string

const (
	ChangeAdded              ChangeKind = "added"
	ChangeUpdated            ChangeKind = "updated"
	ChangeRemoved            ChangeKind = "removed"
	ChangeMilestoneCompleted ChangeKind = "milestone_completed"
	ChangeMilestoneDelayed   ChangeKind = "milestone_delayed"
	ChangeProjectAdded       ChangeKind = "project_added"
)

// DetailCommitHash is the details key holding the originating revision.
const DetailCommitHash = "commitHash"

// ChangeEvent is one classified difference between two snapshots, or one
// inference drawn from a revision message.
type ChangeEvent struct {
	Kind        ChangeKind        `yaml:"type" json:"type"`
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description" json:"description"`
	ProjectID   string            `yaml:"projectId,omitempty" json:"projectId,omitempty"`
	MilestoneID string            `yaml:"milestoneId,omitempty" json:"milestoneId,omitempty"`
	Details     map[string]string `yaml:"details,omitempty" json:"details,omitempty"`
}

// ChangelogEntry bundles the events of one revision or synthetic comparison.
type ChangelogEntry struct {
	ID            string        `yaml:"id" json:"id"`
	Date          time.Time     `yaml:"date" json:"date"`
	Version       string        `yaml:"version" json:"version"`
	Changes       []ChangeEvent `yaml:"changes" json:"changes"`
	CommitHash    string        `yaml:"commitHash,omitempty" json:"commitHash,omitempty"`
	CommitMessage string        `yaml:"commitMessage,omitempty" json:"commitMessage,omitempty"`
	Author        string        `yaml:"author,omitempty" json:"author,omitempty"`
}

// Revision is a commit that touched the data file.
type Revision struct {
	SHA     string    `yaml:"sha" json:"sha"`
	Message string    `yaml:"message" json:"message"`
	Author  string    `yaml:"author" json:"author"`
	Date    time.Time `yaml:"date" json:"date"`
}

// ShortSHA returns the abbreviated revision hash.
func (r Revision) ShortSHA() string {
	if len(r.SHA) > 7 {
		return r.SHA[:7]
	}
	return r.SHA
}

// IssueMilestone is the milestone attached to an issue.
type IssueMilestone struct {
	Title string `yaml:"title" json:"title"`
	DueOn string `yaml:"due_on,omitempty" json:"due_on,omitempty"`
}

// Issue is a repository issue labelled as a milestone.
type Issue struct {
	Number    int             `yaml:"number" json:"number"`
	Title     string          `yaml:"title" json:"title"`
	Body      string          `yaml:"body" json:"body"`
	State     string          `yaml:"state" json:"state"`
	Labels    []string        `yaml:"labels" json:"labels"`
	Assignees []string        `yaml:"assignees" json:"assignees"`
	Milestone *IssueMilestone `yaml:"milestone,omitempty" json:"milestone,omitempty"`
	CreatedAt time.Time       `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time       `yaml:"updated_at" json:"updated_at"`
}
