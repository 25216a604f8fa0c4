package types

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for due dates in the data file.
const DateLayout = "2006-01-02"

// ProjectStatus is the health of a tracked project.
type ProjectStatus string

const (
	ProjectOnTrack   ProjectStatus = "on-track"
	ProjectAtRisk    ProjectStatus = "at-risk"
	ProjectDelayed   ProjectStatus = "delayed"
	ProjectCompleted ProjectStatus = "completed"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOnTrack, ProjectAtRisk, ProjectDelayed, ProjectCompleted:
		return true
	}
	return false
}

// MilestoneStatus is the state of a single deliverable.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneDelayed    MilestoneStatus = "delayed"
)

// Valid reports whether s is one of the known milestone statuses.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneDelayed:
		return true
	}
	return false
}

// Link categories recognized on milestones. Other keys pass through untouched.
const (
	LinkGitHub      = "github"
	LinkDocs        = "docs"
	LinkTestnet     = "testnet"
	LinkExamples    = "examples"
	LinkAuditReport = "auditReport"
)

// Milestone sources for a project.
const (
	MilestonesLocal    = "local"
	MilestonesExternal = "external"
)

// SocialLinks holds a project's community channels.
type SocialLinks struct {
	Twitter  string `yaml:"twitter,omitempty" json:"twitter,omitempty"`
	Discord  string `yaml:"discord,omitempty" json:"discord,omitempty"`
	Telegram string `yaml:"telegram,omitempty" json:"telegram,omitempty"`
}

// Project defines a tracked initiative
type Project struct {
	ID               string        `yaml:"id" json:"id"`
	Name             string        `yaml:"name" json:"name"`
	Category         string        `yaml:"category" json:"category"`
	Status           ProjectStatus `yaml:"status" json:"status"`
	Progress         int           `yaml:"progress" json:"progress"`
	NextMilestone    string        `yaml:"nextMilestone,omitempty" json:"nextMilestone,omitempty"`
	DueDate          string        `yaml:"dueDate,omitempty" json:"dueDate,omitempty"`
	Team             []string      `yaml:"team" json:"team"`
	Dependencies     []string      `yaml:"dependencies" json:"dependencies"`
	Description      string        `yaml:"description,omitempty" json:"description,omitempty"`
	GitHubRepo       string        `yaml:"githubRepo,omitempty" json:"githubRepo,omitempty"`
	MilestoneRepo    string        `yaml:"milestoneRepo,omitempty" json:"milestoneRepo,omitempty"`
	MilestonesSource string        `yaml:"milestonesSource,omitempty" json:"milestonesSource,omitempty"`
	Website          string        `yaml:"website,omitempty" json:"website,omitempty"`
	Documentation    string        `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	SocialLinks      *SocialLinks  `yaml:"socialLinks,omitempty" json:"socialLinks,omitempty"`
	FundingType      string        `yaml:"fundingType,omitempty" json:"fundingType,omitempty"`
	LastUpdated      string        `yaml:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
	UpdatedBy        string        `yaml:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	Milestones       []Milestone   `yaml:"milestones,omitempty" json:"milestones,omitempty"`
}

// Milestone defines a deliverable owned by a single project
type Milestone struct {
	ID               string            `yaml:"id" json:"id"`
	Title            string            `yaml:"title" json:"title"`
	Status           MilestoneStatus   `yaml:"status" json:"status"`
	DueDate          string            `yaml:"dueDate,omitempty" json:"dueDate,omitempty"`
	Progress         int               `yaml:"progress" json:"progress"`
	Description      string            `yaml:"description,omitempty" json:"description,omitempty"`
	DefinitionOfDone string            `yaml:"definitionOfDone,omitempty" json:"definitionOfDone,omitempty"`
	IsGrantMilestone bool              `yaml:"isGrantMilestone,omitempty" json:"isGrantMilestone,omitempty"`
	Dependencies     []string          `yaml:"dependencies" json:"dependencies"`
	Links            map[string]string `yaml:"links" json:"links"`
}

// Due parses the milestone's due date in loc. The second result is false when
// the due date is empty or not a valid calendar date.
func (m Milestone) Due(loc *time.Location) (time.Time, bool) {
	if m.DueDate == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, m.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MilestoneID builds the conventional identifier for the milestone at a
// zero-based position inside a project.
func MilestoneID(projectID string, index int) string {
	return fmt.Sprintf("%s-m%d", projectID, index+1)
}

// Document is the remote data file.
type Document struct {
	Projects   []Project `yaml:"projects" json:"projects"`
	LastUpdate string    `yaml:"lastUpdate" json:"lastUpdate"`
	Version    string    `yaml:"version" json:"version"`
}

// Snapshot is a document as it existed at one revision.
type Snapshot struct {
	Revision    string    `yaml:"revision" json:"revision"`
	RetrievedAt time.Time `yaml:"retrievedAt" json:"retrievedAt"`
	Document    Document  `yaml:"document" json:"document"`
}

// Normalize fills defaults for optional fields and clamps progress values.
// It is applied once when a document enters the program.
func (d *Document) Normalize() {
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		d.Projects[i].normalize()
	}
}

func (p *Project) normalize() {
	if p.Status == "" {
		p.Status = ProjectOnTrack
	}
	p.Progress = ClampProgress(p.Progress)
	if p.Team == nil {
		p.Team = []string{}
	}
	if p.Dependencies == nil {
		p.Dependencies = []string{}
	}
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if m.ID == "" {
			m.ID = MilestoneID(p.ID, i)
		}
		m.normalize()
	}
}

func (m *Milestone) normalize() {
	if m.Status == "" {
		m.Status = MilestonePending
	}
	m.Progress = ClampProgress(m.Progress)
	if m.Dependencies == nil {
		m.Dependencies = []string{}
	}
	if m.Links == nil {
		m.Links = map[string]string{}
	}
}

// ClampProgress forces a percentage into [0,100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
