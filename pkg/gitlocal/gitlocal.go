// Package gitlocal reads the projects document history from a git checkout,
// for working without network access to the hosting service.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/goblinsan/gh-milestone-tracker/pkg/source"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
)

// DefaultLimit bounds the number of revisions listed.
const DefaultLimit = 20

// Source serves revisions of a single file from a git repository.
type Source struct {
	repo   *git.Repository
	branch string
	path   string
	limit  int
	now    func() time.Time
}

// Open opens the repository containing dir. An empty branch reads from HEAD.
func Open(dir, branch, path string) (*Source, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	return New(repo, branch, path), nil
}

// New wraps an already opened repository.
func New(repo *git.Repository, branch, path string) *Source {
	return &Source{
		repo:   repo,
		branch: branch,
		path:   path,
		limit:  DefaultLimit,
		now:    time.Now,
	}
}

// WithLimit sets the maximum number of revisions returned by Revisions.
func (s *Source) WithLimit(n int) *Source {
	if n > 0 {
		s.limit = n
	}
	return s
}

func (s *Source) tip() (plumbing.Hash, error) {
	if s.branch == "" {
		ref, err := s.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		return ref.Hash(), nil
	}
	hash, err := s.repo.ResolveRevision(plumbing.Revision(s.branch))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve branch %s: %w", s.branch, err)
	}
	return *hash, nil
}

// Revisions lists the commits that touched the file, newest first.
func (s *Source) Revisions(ctx context.Context) ([]types.Revision, error) {
	from, err := s.tip()
	if err != nil {
		return nil, err
	}

	path := s.path
	iter, err := s.repo.Log(&git.LogOptions{From: from, FileName: &path})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	revs := []types.Revision{}
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		revs = append(revs, types.Revision{
			SHA:     c.Hash.String(),
			Message: strings.TrimSpace(c.Message),
			Author:  c.Author.Name,
			Date:    c.Committer.When,
		})
		if len(revs) >= s.limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}
	return revs, nil
}

// SnapshotAt returns the document as committed at sha.
func (s *Source) SnapshotAt(ctx context.Context, sha string) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := s.repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return nil, fmt.Errorf("%w: revision %s", source.ErrNotFound, sha)
	}
	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	file, err := commit.File(s.path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s at %s", source.ErrNotFound, s.path, sha)
		}
		return nil, fmt.Errorf("failed to read %s at %s: %w", s.path, sha, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", s.path, sha, err)
	}
	doc, err := types.DecodeDocument([]byte(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to parse data at %s: %w", sha, err)
	}
	return &types.Snapshot{Revision: sha, RetrievedAt: s.now(), Document: *doc}, nil
}
