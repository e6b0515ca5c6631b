// Package revlist walks the commit DAG in committer-timestamp order.
//
// The walker is seeded with included and excluded tips. A commit is emitted
// iff it is reachable from an included tip, not reachable from any excluded
// tip, and (when a path filter is supplied) its tree differs from its first
// parent's tree on a filtered path.
package revlist

import (
	"container/heap"
	"context"
	"log/slog"

	"github.com/kkeuning/gitcore/pkg/common/logger"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/commit"
	"github.com/kkeuning/gitcore/pkg/pathfilter"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/revision"
	"github.com/kkeuning/gitcore/pkg/treediff"
)

type commitFlags uint8

const (
	flagQueued commitFlags = 1 << iota
	flagPopped
	flagIncluded
	flagExcluded
)

// Entry pairs an emitted commit with its id.
type Entry struct {
	SHA    objects.ObjectHash
	Commit *commit.Commit
}

// Walker performs the priority-queue traversal.
type Walker struct {
	repo   *sourcerepo.SourceRepository
	cache  *CommitCache
	differ *treediff.Differ
	logger *slog.Logger
}

// NewWalker creates a walker bound to a repository.
func NewWalker(repo *sourcerepo.SourceRepository) *Walker {
	return &Walker{
		repo:   repo,
		cache:  NewCommitCache(repo),
		differ: treediff.NewDiffer(repo),
		logger: logger.With("component", "revlist"),
	}
}

// Walk traverses the DAG from the resolved tips and returns the emitted
// commits, newest first. Ties on committer timestamp break on id order.
func (w *Walker) Walk(ctx context.Context, resolved *revision.Resolved) ([]Entry, error) {
	flags := make(map[objects.ObjectHash]commitFlags)
	queue := &commitQueue{}
	heap.Init(queue)

	// A counter of pending entries that are still interesting (not yet
	// known to be excluded): when it reaches zero the remaining frontier
	// is all excluded ancestry and traversal can stop early.
	interesting := 0

	push := func(sha objects.ObjectHash, add commitFlags) error {
		f := flags[sha]
		was := f
		f |= add
		flags[sha] = f

		if f&flagQueued != 0 {
			// Already pending; a newly learned exclusion makes a
			// previously interesting entry uninteresting.
			if f&flagPopped == 0 && was&flagExcluded == 0 && f&flagExcluded != 0 {
				interesting--
			}
			return nil
		}
		if f&flagPopped != 0 {
			return nil
		}

		c, err := w.cache.Get(sha)
		if err != nil {
			return err
		}

		flags[sha] = f | flagQueued
		heap.Push(queue, queueItem{sha: sha, when: committerStamp(c)})
		if f&flagExcluded == 0 {
			interesting++
		}
		return nil
	}

	for _, sha := range resolved.Excluded {
		if err := push(sha, flagExcluded); err != nil {
			return nil, err
		}
	}
	for _, sha := range resolved.Included {
		if err := push(sha, flagIncluded); err != nil {
			return nil, err
		}
	}

	var out []Entry
	for queue.Len() > 0 && interesting > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		item := heap.Pop(queue).(queueItem)
		f := flags[item.sha]
		flags[item.sha] = f | flagPopped
		if f&flagExcluded == 0 {
			interesting--
		}

		c, err := w.cache.Get(item.sha)
		if err != nil {
			return nil, err
		}

		// Propagate flags: exclusion poisons all ancestors, inclusion
		// spreads unless the ancestor is already excluded.
		propagate := flagIncluded
		if f&flagExcluded != 0 {
			propagate = flagExcluded
		}
		for _, parent := range c.ParentSHAs {
			if err := push(parent, propagate); err != nil {
				return nil, err
			}
		}

		if f&flagIncluded == 0 || f&flagExcluded != 0 {
			continue
		}

		if resolved.Filter != nil {
			changed, err := w.touchesFilter(ctx, c, resolved.Filter)
			if err != nil {
				return nil, err
			}
			if !changed {
				continue
			}
		}

		out = append(out, Entry{SHA: item.sha, Commit: c})
	}

	return out, nil
}

// touchesFilter reports whether the commit's tree differs from its first
// parent's tree on any path covered by the filter. Root commits compare
// against the empty tree.
func (w *Walker) touchesFilter(ctx context.Context, c *commit.Commit, filter *pathfilter.Filter) (bool, error) {
	var parentTree objects.ObjectHash
	if len(c.ParentSHAs) > 0 {
		parent, err := w.cache.Get(c.ParentSHAs[0])
		if err != nil {
			return false, err
		}
		parentTree = parent.TreeSHA
	}

	changes, err := w.differ.DiffTrees(ctx, parentTree, c.TreeSHA, filter)
	if err != nil {
		return false, err
	}
	return len(changes) > 0, nil
}

func committerStamp(c *commit.Commit) int64 {
	if c.Committer != nil {
		return c.Committer.When.Unix()
	}
	if c.Author != nil {
		return c.Author.When.Unix()
	}
	return 0
}

// queueItem is a pending commit keyed by committer timestamp.
type queueItem struct {
	sha  objects.ObjectHash
	when int64
}

// commitQueue is a max-heap: newest committer timestamp first, ties broken
// by descending id so traversal order is deterministic.
type commitQueue []queueItem

func (q commitQueue) Len() int { return len(q) }

func (q commitQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when > q[j].when
	}
	return q[i].sha > q[j].sha
}

func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *commitQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *commitQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
