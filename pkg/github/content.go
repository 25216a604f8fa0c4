package github

import (
	"context"
	"fmt"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
)

// blobQuery reads a file as it existed at a revision.
type blobQuery struct {
	Repository struct {
		Object struct {
			Blob struct {
				Text *githubv4.String
			} `graphql:"... on Blob"`
		} `graphql:"object(expression: $expression)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GetFileContent returns the decoded contents of path at ref. An empty ref
// means the default branch.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, resp, err := c.REST.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get contents of %s: %w", path, wrapNotFound(resp, err))
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode contents of %s: %w", path, err)
	}
	return []byte(content), nil
}

// GetFileAtRevision returns path as it existed at sha. Authenticated clients
// use a single GraphQL lookup; anonymous clients fall back to the contents API.
func (c *Client) GetFileAtRevision(ctx context.Context, owner, repo, sha, path string) ([]byte, error) {
	if !c.authenticated {
		return c.GetFileContent(ctx, owner, repo, path, sha)
	}

	var q blobQuery
	variables := map[string]interface{}{
		"owner":      githubv4.String(owner),
		"name":       githubv4.String(repo),
		"expression": githubv4.String(sha + ":" + path),
	}
	if err := c.GraphQL.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to query %s at %s: %w", path, sha, err)
	}
	if q.Repository.Object.Blob.Text == nil {
		return nil, fmt.Errorf("%s at %s: %w", path, sha, ErrNotFound)
	}
	return []byte(*q.Repository.Object.Blob.Text), nil
}

// ListFileCommits returns the most recent commits on branch that touched path,
// newest first.
func (c *Client) ListFileCommits(ctx context.Context, owner, repo, branch, path string, perPage int) ([]types.Revision, error) {
	commits, resp, err := c.REST.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		SHA:         branch,
		Path:        path,
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s commits: %w", branch, wrapNotFound(resp, err))
	}

	revisions := make([]types.Revision, 0, len(commits))
	for _, rc := range commits {
		commit := rc.GetCommit()
		revisions = append(revisions, types.Revision{
			SHA:     rc.GetSHA(),
			Message: commit.GetMessage(),
			Author:  commit.GetAuthor().GetName(),
			Date:    commit.GetCommitter().GetDate().Time,
		})
	}
	return revisions, nil
}

// ListMilestoneIssues returns open and closed issues labelled "milestone".
// Pull requests are skipped.
func (c *Client) ListMilestoneIssues(ctx context.Context, owner, repo string) ([]types.Issue, error) {
	issues, resp, err := c.REST.Issues.ListByRepo(ctx, owner, repo, &github.IssueListByRepoOptions{
		State:       "all",
		Labels:      []string{"milestone"},
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", wrapNotFound(resp, err))
	}

	out := make([]types.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		item := types.Issue{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			Body:      issue.GetBody(),
			State:     issue.GetState(),
			Labels:    []string{},
			Assignees: []string{},
			CreatedAt: issue.GetCreatedAt().Time,
			UpdatedAt: issue.GetUpdatedAt().Time,
		}
		for _, label := range issue.Labels {
			item.Labels = append(item.Labels, label.GetName())
		}
		for _, user := range issue.Assignees {
			item.Assignees = append(item.Assignees, user.GetLogin())
		}
		if m := issue.Milestone; m != nil {
			item.Milestone = &types.IssueMilestone{Title: m.GetTitle()}
			if due := m.GetDueOn(); !due.IsZero() {
				item.Milestone.DueOn = due.Format(types.DateLayout)
			}
		}
		out = append(out, item)
	}
	return out, nil
}
