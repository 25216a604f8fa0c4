package source

import (
	"context"
	"errors"
	"testing"
	"time"

	ghclient "github.com/goblinsan/gh-milestone-tracker/pkg/github"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements RemoteClient for testing
type mockClient struct {
	files       map[string][]byte // key: owner/repo/path
	revisions   map[string][]byte // key: sha
	commits     []types.Revision
	issues      []types.Issue
	err         error
	contentHits int
}

func (m *mockClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	m.contentHits++
	if m.err != nil {
		return nil, m.err
	}
	raw, ok := m.files[owner+"/"+repo+"/"+path]
	if !ok {
		return nil, ghclient.ErrNotFound
	}
	return raw, nil
}

func (m *mockClient) GetFileAtRevision(ctx context.Context, owner, repo, sha, path string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	raw, ok := m.revisions[sha]
	if !ok {
		return nil, ghclient.ErrNotFound
	}
	return raw, nil
}

func (m *mockClient) ListFileCommits(ctx context.Context, owner, repo, branch, path string, perPage int) ([]types.Revision, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.commits) > perPage {
		return m.commits[:perPage], nil
	}
	return m.commits, nil
}

func (m *mockClient) ListMilestoneIssues(ctx context.Context, owner, repo string) ([]types.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.issues, nil
}

const projectsJSON = `{
  "projects": [
    {"id": "alpha", "name": "Alpha", "status": "on-track", "progress": 40,
     "milestones": [{"id": "alpha-m1", "title": "Launch", "status": "pending", "dueDate": "2024-08-01"}]}
  ]
}`

func dataKey() string {
	return DefaultRepository.Owner + "/" + DefaultRepository.Name + "/" + DefaultRepository.DataPath
}

func TestProjects_FetchesAndCaches(t *testing.T) {
	client := &mockClient{files: map[string][]byte{dataKey(): []byte(projectsJSON)}}
	svc := NewService(client, DefaultRepository, Options{})

	doc := svc.Projects(context.Background())
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "alpha", doc.Projects[0].ID)

	again := svc.Projects(context.Background())
	assert.Equal(t, doc.Projects[0].Milestones, again.Projects[0].Milestones)
	assert.Equal(t, 1, client.contentHits, "second call should be served from cache")
}

func TestProjects_FallbackOnError(t *testing.T) {
	client := &mockClient{err: errors.New("rate limited")}
	svc := NewService(client, DefaultRepository, Options{})

	doc := svc.Projects(context.Background())
	assert.Equal(t, MockDocument(), doc)

	// Fallback data is not cached.
	svc.Projects(context.Background())
	assert.Equal(t, 2, client.contentHits)
}

func TestProjects_FallbackOnInvalidDocument(t *testing.T) {
	client := &mockClient{files: map[string][]byte{dataKey(): []byte(`{"projects": [{"name": "no id"}]}`)}}
	svc := NewService(client, DefaultRepository, Options{})

	doc := svc.Projects(context.Background())
	assert.Equal(t, MockDocument(), doc)
}

func TestIssues_EmptyOnError(t *testing.T) {
	svc := NewService(&mockClient{err: errors.New("boom")}, DefaultRepository, Options{})

	issues := svc.Issues(context.Background())
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestIssues(t *testing.T) {
	client := &mockClient{issues: []types.Issue{{Number: 3, Title: "Milestone: Launch"}}}
	svc := NewService(client, DefaultRepository, Options{})

	issues := svc.Issues(context.Background())
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Number)
}

func TestRevisions_RespectsLimit(t *testing.T) {
	client := &mockClient{commits: []types.Revision{{SHA: "a"}, {SHA: "b"}, {SHA: "c"}}}
	svc := NewService(client, DefaultRepository, Options{CommitLimit: 2})

	revs, err := svc.Revisions(context.Background())
	require.NoError(t, err)
	assert.Len(t, revs, 2)
}

func TestRevisions_Error(t *testing.T) {
	svc := NewService(&mockClient{err: errors.New("boom")}, DefaultRepository, Options{})

	_, err := svc.Revisions(context.Background())
	assert.ErrorContains(t, err, "failed to list revisions")
}

func TestSnapshotAt(t *testing.T) {
	now := time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC)
	client := &mockClient{revisions: map[string][]byte{
		"good": []byte(projectsJSON),
		"bad":  []byte(`{"projects": [`),
	}}
	svc := NewService(client, DefaultRepository, Options{Now: func() time.Time { return now }})

	snap, err := svc.SnapshotAt(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "good", snap.Revision)
	assert.Equal(t, now, snap.RetrievedAt)
	assert.Len(t, snap.Document.Projects, 1)

	_, err = svc.SnapshotAt(context.Background(), "bad")
	assert.ErrorContains(t, err, "failed to parse data at bad")

	_, err = svc.SnapshotAt(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExternalMilestones(t *testing.T) {
	client := &mockClient{files: map[string][]byte{
		"acme/roadmap/" + MilestonesFile: []byte("## Mainnet\nStatus: in progress 30%\nDue: 2024-10-01\n"),
	}}
	svc := NewService(client, DefaultRepository, Options{})

	local := types.Project{ID: "local", Milestones: []types.Milestone{{ID: "local-m1", Title: "Kept"}}}
	got, err := svc.ExternalMilestones(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, local.Milestones, got)

	external := types.Project{
		ID:               "ext",
		MilestonesSource: types.MilestonesExternal,
		MilestoneRepo:    "https://github.com/acme/roadmap",
	}
	got, err = svc.ExternalMilestones(context.Background(), external)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mainnet", got[0].Title)
	assert.Equal(t, types.MilestoneInProgress, got[0].Status)
	assert.Equal(t, 30, got[0].Progress)
	assert.Equal(t, "2024-10-01", got[0].DueDate)
}

func TestExternalMilestones_MissingFileKeepsExisting(t *testing.T) {
	svc := NewService(&mockClient{}, DefaultRepository, Options{})
	p := types.Project{
		ID:               "ext",
		MilestonesSource: types.MilestonesExternal,
		MilestoneRepo:    "https://github.com/acme/empty",
		Milestones:       []types.Milestone{{ID: "ext-m1", Title: "Existing"}},
	}

	got, err := svc.ExternalMilestones(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.Milestones, got)
}

func TestExternalMilestones_BadRepoURL(t *testing.T) {
	svc := NewService(&mockClient{}, DefaultRepository, Options{})
	p := types.Project{ID: "ext", MilestonesSource: types.MilestonesExternal, MilestoneRepo: "not a url"}

	_, err := svc.ExternalMilestones(context.Background(), p)
	assert.Error(t, err)
}

func TestResolveMilestones(t *testing.T) {
	client := &mockClient{files: map[string][]byte{
		"acme/roadmap/" + MilestonesFile: []byte("## Audit\n✅ done\n"),
	}}
	svc := NewService(client, DefaultRepository, Options{})
	doc := &types.Document{Projects: []types.Project{
		{ID: "ext", MilestonesSource: types.MilestonesExternal, MilestoneRepo: "https://github.com/acme/roadmap.git"},
		{ID: "bad", MilestonesSource: types.MilestonesExternal, MilestoneRepo: "nope",
			Milestones: []types.Milestone{{ID: "bad-m1"}}},
	}}

	out := svc.ResolveMilestones(context.Background(), doc)
	require.Len(t, out.Projects, 2)
	require.Len(t, out.Projects[0].Milestones, 1)
	assert.Equal(t, types.MilestoneCompleted, out.Projects[0].Milestones[0].Status)
	assert.Equal(t, "bad-m1", out.Projects[1].Milestones[0].ID)
	assert.Empty(t, doc.Projects[0].Milestones, "input document is not modified")
}

func TestResolvedProjects_CachesResolution(t *testing.T) {
	client := &mockClient{files: map[string][]byte{
		dataKey(): []byte(`{"projects": [{"id": "ext", "name": "Ext", "milestonesSource": "external",
			"milestoneRepo": "https://github.com/acme/roadmap"}]}`),
		"acme/roadmap/" + MilestonesFile: []byte("## Audit\n✅ done\n"),
	}}
	svc := NewService(client, DefaultRepository, Options{})

	doc := svc.ResolvedProjects(context.Background())
	require.Len(t, doc.Projects[0].Milestones, 1)
	assert.Equal(t, "Audit", doc.Projects[0].Milestones[0].Title)
	assert.Equal(t, 2, client.contentHits)

	again := svc.ResolvedProjects(context.Background())
	assert.Equal(t, doc.Projects[0].Milestones, again.Projects[0].Milestones)
	assert.Equal(t, 2, client.contentHits, "milestones file should not be fetched again")
}

func TestResolvedProjects_FallbackNotCached(t *testing.T) {
	client := &mockClient{err: errors.New("rate limited")}
	svc := NewService(client, DefaultRepository, Options{})

	first := svc.ResolvedProjects(context.Background())
	hits := client.contentHits
	svc.ResolvedProjects(context.Background())

	assert.Equal(t, len(MockDocument().Projects), len(first.Projects))
	assert.Greater(t, client.contentHits, hits, "fallback data is fetched again")
}
