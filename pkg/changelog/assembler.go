// Package changelog assembles a human-readable history of the projects
// document from its revisions.
package changelog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/cache"
	"github.com/goblinsan/gh-milestone-tracker/pkg/diff"
	"github.com/goblinsan/gh-milestone-tracker/pkg/metrics"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RevisionSource lists revisions of the projects document and retrieves the
// document at any of them.
type RevisionSource interface {
	Revisions(ctx context.Context) ([]types.Revision, error)
	SnapshotAt(ctx context.Context, sha string) (*types.Snapshot, error)
}

const cacheKey = "changelog"

// Defaults applied by NewAssembler.
const (
	DefaultTTL          = 10 * time.Minute
	DefaultMaxRevisions = 10
)

// Options configures an Assembler.
type Options struct {
	Cache        cache.Cache
	Logger       *zap.Logger
	Rules        []Rule
	MaxRevisions int
	Now          func() time.Time
}

// Assembler builds changelog entries from a RevisionSource and keeps the
// result in its cache.
type Assembler struct {
	source       RevisionSource
	cache        cache.Cache
	logger       *zap.Logger
	rules        []Rule
	maxRevisions int
	now          func() time.Time
}

// NewAssembler creates an Assembler. A nil cache defaults to an in-memory
// cache holding results for DefaultTTL.
func NewAssembler(src RevisionSource, opts Options) *Assembler {
	a := &Assembler{
		source:       src,
		cache:        opts.Cache,
		logger:       opts.Logger,
		rules:        opts.Rules,
		maxRevisions: opts.MaxRevisions,
		now:          opts.Now,
	}
	if a.cache == nil {
		a.cache = cache.NewMemory(DefaultTTL)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.rules == nil {
		a.rules = DefaultRules
	}
	if a.maxRevisions <= 0 {
		a.maxRevisions = DefaultMaxRevisions
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Changelog returns the cached changelog, building it on a miss. When the
// history cannot be listed, or is empty, the Fallback changelog is returned
// and nothing is cached.
func (a *Assembler) Changelog(ctx context.Context) []types.ChangelogEntry {
	var cached []types.ChangelogEntry
	hit := cache.GetJSON(ctx, a.cache, cacheKey, &cached)
	metrics.RecordCacheLookup(cacheKey, hit)
	if hit {
		return cached
	}

	entries, err := a.Build(ctx)
	if err != nil || len(entries) == 0 {
		if err != nil {
			a.logger.Warn("Failed to build changelog, serving fallback", zap.Error(err))
		} else {
			a.logger.Info("No revisions found, serving fallback changelog")
		}
		metrics.RecordFallback("changelog")
		return Fallback(a.now())
	}

	metrics.ChangelogEntries.Set(float64(len(entries)))
	cache.SetJSON(ctx, a.cache, cacheKey, entries)
	return entries
}

// Build produces one entry per revision, for at most the configured number of
// most recent revisions, ordered newest first. Only a failure to list
// revisions is returned as an error; a snapshot that cannot be fetched drops
// the data comparison for that revision and keeps its message-based events.
func (a *Assembler) Build(ctx context.Context) ([]types.ChangelogEntry, error) {
	start := time.Now()
	revs, err := a.source.Revisions(ctx)
	metrics.RecordFetch("changelog_revisions", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	snaps := &snapshotSet{source: a.source, docs: map[string]*types.Snapshot{}}
	entries := []types.ChangelogEntry{}
	for i := 0; i < len(revs) && i < a.maxRevisions; i++ {
		var prev *types.Revision
		if i+1 < len(revs) {
			prev = &revs[i+1]
		}
		entries = append(entries, a.entryFor(ctx, snaps, revs[i], prev))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// entryFor combines message heuristics with the data comparison against the
// preceding revision. An entry always carries at least one event.
func (a *Assembler) entryFor(ctx context.Context, snaps *snapshotSet, rev types.Revision, prev *types.Revision) types.ChangelogEntry {
	events := ClassifyRevision(rev, a.rules)

	if prev != nil {
		after, before, err := snaps.pair(ctx, rev.SHA, prev.SHA)
		if err != nil {
			a.logger.Warn("Failed to compare revisions",
				zap.String("revision", rev.ShortSHA()),
				zap.String("previous", prev.ShortSHA()),
				zap.Error(err),
			)
		} else {
			events = append(events, diff.Compare(&after.Document, &before.Document, rev.ShortSHA())...)
		}
	}

	if len(events) == 0 {
		description := rev.Message
		if description == "" {
			description = "Project data has been updated"
		}
		events = append(events, types.ChangeEvent{
			Kind:        types.ChangeUpdated,
			Title:       "Data Updated",
			Description: description,
			Details:     map[string]string{types.DetailCommitHash: rev.ShortSHA()},
		})
	}

	return types.ChangelogEntry{
		ID:            rev.SHA,
		Date:          rev.Date,
		Version:       VersionLabel(rev.Message, rev.Date),
		Changes:       events,
		CommitHash:    rev.ShortSHA(),
		CommitMessage: rev.Message,
		Author:        rev.Author,
	}
}

// snapshotSet memoizes snapshots for one Build, since each revision is read
// both as the newer and as the older side of a comparison.
type snapshotSet struct {
	source RevisionSource
	mu     sync.Mutex
	docs   map[string]*types.Snapshot
}

func (s *snapshotSet) get(ctx context.Context, sha string) (*types.Snapshot, error) {
	s.mu.Lock()
	snap, ok := s.docs[sha]
	s.mu.Unlock()
	if ok {
		return snap, nil
	}

	start := time.Now()
	snap, err := s.source.SnapshotAt(ctx, sha)
	metrics.RecordFetch("changelog_snapshot", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docs[sha] = snap
	s.mu.Unlock()
	return snap, nil
}

// pair fetches both snapshots concurrently.
func (s *snapshotSet) pair(ctx context.Context, afterSHA, beforeSHA string) (after, before *types.Snapshot, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		after, err = s.get(gctx, afterSHA)
		return err
	})
	g.Go(func() error {
		var err error
		before, err = s.get(gctx, beforeSHA)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return after, before, nil
}
