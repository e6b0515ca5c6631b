// Package merge implements best-common-ancestor discovery on the commit
// DAG and the merge operation built on top of it.
package merge

import (
	"container/heap"
	"context"

	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/revlist"
)

type ancestorColor uint8

const (
	colorLeft  ancestorColor = 1 << iota // reachable from the first commit
	colorRight                           // reachable from the second commit
	colorStale                           // ancestor of an already-found BCA

	colorBoth = colorLeft | colorRight
)

// BCAFinder locates the best common ancestor of two commits: the most
// recent commit reachable from both, ties broken by id order.
type BCAFinder struct {
	repo  *sourcerepo.SourceRepository
	cache *revlist.CommitCache
}

// NewBCAFinder creates a finder bound to a repository.
func NewBCAFinder(repo *sourcerepo.SourceRepository) *BCAFinder {
	return &BCAFinder{
		repo:  repo,
		cache: revlist.NewCommitCache(repo),
	}
}

// Find runs a two-source walk over first-and-all parents, coloring each
// commit with the sides that reached it. The walk pops commits newest
// first, so the first commit to acquire both colors is the best common
// ancestor; everything beneath it is marked stale and drained.
func (f *BCAFinder) Find(ctx context.Context, left, right objects.ObjectHash) (objects.ObjectHash, error) {
	if left == right {
		return left, nil
	}

	colors := make(map[objects.ObjectHash]ancestorColor)
	queue := &stampQueue{}
	heap.Init(queue)

	// Entries that are not yet stale. Once every pending commit is stale
	// no strictly-newer candidate can surface, and the walk stops.
	fresh := 0

	push := func(sha objects.ObjectHash, color ancestorColor) error {
		was, queued := colors[sha]
		now := was | color
		colors[sha] = now

		if queued {
			if was&colorStale == 0 && now&colorStale != 0 {
				fresh--
			}
			return nil
		}

		c, err := f.cache.Get(sha)
		if err != nil {
			return err
		}
		var when int64
		if c.Committer != nil {
			when = c.Committer.When.Unix()
		}
		heap.Push(queue, stampItem{sha: sha, when: when})
		if now&colorStale == 0 {
			fresh++
		}
		return nil
	}

	if err := push(left, colorLeft); err != nil {
		return "", err
	}
	if err := push(right, colorRight); err != nil {
		return "", err
	}

	var best objects.ObjectHash
	for queue.Len() > 0 && fresh > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		item := heap.Pop(queue).(stampItem)
		color := colors[item.sha]
		if color&colorStale == 0 {
			fresh--
		}

		propagate := color & colorBoth
		if color&colorBoth == colorBoth {
			if best == "" && color&colorStale == 0 {
				// Newest commit reached from both sides: the pop
				// order guarantees nothing more recent remains.
				best = item.sha
			}
			propagate |= colorStale
		}

		c, err := f.cache.Get(item.sha)
		if err != nil {
			return "", err
		}
		for _, parent := range c.ParentSHAs {
			if err := push(parent, propagate); err != nil {
				return "", err
			}
		}
	}

	if best == "" {
		return "", NewNoCommonAncestorError(left, right)
	}
	return best, nil
}

// stampItem orders pending commits by committer timestamp.
type stampItem struct {
	sha  objects.ObjectHash
	when int64
}

// stampQueue is a max-heap: newest first, ties broken by descending id.
type stampQueue []stampItem

func (q stampQueue) Len() int { return len(q) }

func (q stampQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when > q[j].when
	}
	return q[i].sha > q[j].sha
}

func (q stampQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *stampQueue) Push(x any) { *q = append(*q, x.(stampItem)) }

func (q *stampQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
