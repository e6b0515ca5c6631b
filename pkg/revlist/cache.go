package revlist

import (
	"sync"

	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/commit"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
)

// CommitCache memoizes commit loads during a traversal. A walk touches
// each commit once for flag propagation and possibly again for path-filter
// parent lookups, so caching halves object database reads.
type CommitCache struct {
	repo    *sourcerepo.SourceRepository
	mu      sync.RWMutex
	commits map[objects.ObjectHash]*commit.Commit
}

// NewCommitCache creates an empty cache backed by the repository.
func NewCommitCache(repo *sourcerepo.SourceRepository) *CommitCache {
	return &CommitCache{
		repo:    repo,
		commits: make(map[objects.ObjectHash]*commit.Commit),
	}
}

// Get returns the commit for the id, loading and caching it on first use.
func (cc *CommitCache) Get(sha objects.ObjectHash) (*commit.Commit, error) {
	cc.mu.RLock()
	if c, ok := cc.commits[sha]; ok {
		cc.mu.RUnlock()
		return c, nil
	}
	cc.mu.RUnlock()

	c, err := cc.repo.ReadCommitObject(sha)
	if err != nil {
		return nil, err
	}

	cc.mu.Lock()
	cc.commits[sha] = c
	cc.mu.Unlock()
	return c, nil
}

// Len reports how many commits are cached.
func (cc *CommitCache) Len() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commits)
}
