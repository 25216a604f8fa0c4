// Package source fetches the projects document, its revision history and
// milestone issues from the repository that hosts them.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/cache"
	ghclient "github.com/goblinsan/gh-milestone-tracker/pkg/github"
	"github.com/goblinsan/gh-milestone-tracker/pkg/metrics"
	"github.com/goblinsan/gh-milestone-tracker/pkg/parser"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"go.uber.org/zap"
)

// RemoteClient defines the repository host operations needed by the service.
type RemoteClient interface {
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	GetFileAtRevision(ctx context.Context, owner, repo, sha, path string) ([]byte, error)
	ListFileCommits(ctx context.Context, owner, repo, branch, path string, perPage int) ([]types.Revision, error)
	ListMilestoneIssues(ctx context.Context, owner, repo string) ([]types.Issue, error)
}

// Ensure *github.Client satisfies the interface at compile time.
var _ RemoteClient = (*ghclient.Client)(nil)

// ErrNotFound is returned when the requested revision or file does not exist.
var ErrNotFound = ghclient.ErrNotFound

// Cache keys.
const (
	projectsKey = "projects-data"
	resolvedKey = "resolved-projects-data"
	issuesKey   = "issues-data"
)

// MilestonesFile is the document read from a project's milestone repository.
const MilestonesFile = "milestones.md"

// Repository locates the data file.
type Repository struct {
	Owner         string
	Name          string
	Branch        string
	HistoryBranch string
	DataPath      string
}

// DefaultRepository is the upstream data repository.
var DefaultRepository = Repository{
	Owner:         "codingshot",
	Name:          "nearmilestones",
	Branch:        "main",
	HistoryBranch: "prod",
	DataPath:      "public/data/projects.json",
}

// Options configures a Service.
type Options struct {
	Cache       cache.Cache
	Logger      *zap.Logger
	CommitLimit int
	Now         func() time.Time
}

// Service is the data service shared by the commands.
type Service struct {
	client RemoteClient
	repo   Repository
	cache  cache.Cache
	logger *zap.Logger
	limit  int
	now    func() time.Time
}

// NewService creates a Service. A nil cache defaults to a five minute
// in-memory cache.
func NewService(client RemoteClient, repo Repository, opts Options) *Service {
	s := &Service{
		client: client,
		repo:   repo,
		cache:  opts.Cache,
		logger: opts.Logger,
		limit:  opts.CommitLimit,
		now:    opts.Now,
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(5 * time.Minute)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.limit <= 0 {
		s.limit = 20
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Repository returns the data repository coordinates.
func (s *Service) Repository() Repository {
	return s.repo
}

// Projects returns the current document. Any fetch or decode failure is
// logged and answered with MockDocument.
func (s *Service) Projects(ctx context.Context) *types.Document {
	doc, _ := s.projects(ctx)
	return doc
}

// projects reports false when doc is the fallback.
func (s *Service) projects(ctx context.Context) (*types.Document, bool) {
	var cached types.Document
	hit := cache.GetJSON(ctx, s.cache, projectsKey, &cached)
	metrics.RecordCacheLookup(projectsKey, hit)
	if hit {
		return &cached, true
	}

	start := time.Now()
	doc, err := s.fetchDocument(ctx)
	metrics.RecordFetch("projects", err, time.Since(start))
	if err != nil {
		s.logger.Warn("Failed to fetch projects data, serving fallback",
			zap.String("owner", s.repo.Owner),
			zap.String("repo", s.repo.Name),
			zap.String("path", s.repo.DataPath),
			zap.Error(err),
		)
		metrics.RecordFallback("projects")
		return MockDocument(), false
	}

	cache.SetJSON(ctx, s.cache, projectsKey, doc)
	return doc, true
}

// ResolvedProjects is Projects with external milestones resolved. The result
// is cached unless it was built from the fallback document.
func (s *Service) ResolvedProjects(ctx context.Context) *types.Document {
	var cached types.Document
	hit := cache.GetJSON(ctx, s.cache, resolvedKey, &cached)
	metrics.RecordCacheLookup(resolvedKey, hit)
	if hit {
		return &cached
	}

	doc, ok := s.projects(ctx)
	resolved := s.ResolveMilestones(ctx, doc)
	if ok {
		cache.SetJSON(ctx, s.cache, resolvedKey, resolved)
	}
	return resolved
}

func (s *Service) fetchDocument(ctx context.Context) (*types.Document, error) {
	raw, err := s.client.GetFileContent(ctx, s.repo.Owner, s.repo.Name, s.repo.DataPath, s.repo.Branch)
	if err != nil {
		return nil, err
	}
	return types.DecodeDocument(raw)
}

// Issues returns milestone issues, or an empty list when they cannot be fetched.
func (s *Service) Issues(ctx context.Context) []types.Issue {
	var cached []types.Issue
	hit := cache.GetJSON(ctx, s.cache, issuesKey, &cached)
	metrics.RecordCacheLookup(issuesKey, hit)
	if hit {
		return cached
	}

	start := time.Now()
	issues, err := s.client.ListMilestoneIssues(ctx, s.repo.Owner, s.repo.Name)
	metrics.RecordFetch("issues", err, time.Since(start))
	if err != nil {
		s.logger.Warn("Failed to fetch milestone issues", zap.Error(err))
		metrics.RecordFallback("issues")
		return []types.Issue{}
	}

	cache.SetJSON(ctx, s.cache, issuesKey, issues)
	return issues
}

// Revisions lists the most recent commits on the history branch that touched
// the data file, newest first.
func (s *Service) Revisions(ctx context.Context) ([]types.Revision, error) {
	start := time.Now()
	revs, err := s.client.ListFileCommits(ctx, s.repo.Owner, s.repo.Name, s.repo.HistoryBranch, s.repo.DataPath, s.limit)
	metrics.RecordFetch("revisions", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	return revs, nil
}

// SnapshotAt returns the document as it existed at sha.
func (s *Service) SnapshotAt(ctx context.Context, sha string) (*types.Snapshot, error) {
	start := time.Now()
	raw, err := s.client.GetFileAtRevision(ctx, s.repo.Owner, s.repo.Name, sha, s.repo.DataPath)
	metrics.RecordFetch("snapshot", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data at %s: %w", sha, err)
	}
	doc, err := types.DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data at %s: %w", sha, err)
	}
	return &types.Snapshot{Revision: sha, RetrievedAt: s.now(), Document: *doc}, nil
}

// ExternalMilestones reads milestones.md from the project's milestone
// repository and parses it. Projects that keep their milestones in the data
// file return them unchanged.
func (s *Service) ExternalMilestones(ctx context.Context, p types.Project) ([]types.Milestone, error) {
	if p.MilestonesSource != types.MilestonesExternal || p.MilestoneRepo == "" {
		return p.Milestones, nil
	}
	owner, repo, ok := parser.ParseGitHubURL(p.MilestoneRepo)
	if !ok {
		return nil, fmt.Errorf("project %s: milestone repository %q is not a GitHub URL", p.ID, p.MilestoneRepo)
	}

	raw, err := s.client.GetFileContent(ctx, owner, repo, MilestonesFile, "")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("No milestones file in milestone repository",
				zap.String("project", p.ID), zap.String("repo", owner+"/"+repo))
			return p.Milestones, nil
		}
		return nil, fmt.Errorf("failed to fetch milestones for %s: %w", p.ID, err)
	}
	return parser.ParseMilestones(string(raw), p.ID), nil
}

// ResolveMilestones replaces the milestones of every external project with
// the parsed contents of its milestones file. Failures keep the milestones
// already present in the document.
func (s *Service) ResolveMilestones(ctx context.Context, doc *types.Document) *types.Document {
	out := *doc
	out.Projects = make([]types.Project, len(doc.Projects))
	for i, p := range doc.Projects {
		milestones, err := s.ExternalMilestones(ctx, p)
		if err != nil {
			s.logger.Warn("Failed to resolve external milestones", zap.String("project", p.ID), zap.Error(err))
			milestones = p.Milestones
		}
		p.Milestones = milestones
		out.Projects[i] = p
	}
	return &out
}
