package merge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kkeuning/gitcore/pkg/commitmanager"
	"github.com/kkeuning/gitcore/pkg/common/logger"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/commit"
	"github.com/kkeuning/gitcore/pkg/refs/branch"
	"github.com/kkeuning/gitcore/pkg/repository/refs"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/treediff"
	"github.com/kkeuning/gitcore/pkg/workdir"
)

// Result describes a completed merge.
type Result struct {
	CommitSHA objects.ObjectHash
	BaseSHA   objects.ObjectHash
	Parents   []objects.ObjectHash
	Applied   *workdir.MigrationResult
}

// Merger joins another commit's history into the current branch. The
// ancestry is computed with the BCA finder, the base-to-tip diff is
// migrated into the workspace and index, and a two-parent commit records
// the join.
type Merger struct {
	repo       *sourcerepo.SourceRepository
	branchRefs *branch.BranchRefManager
	bca        *BCAFinder
	differ     *treediff.Differ
	workdirMgr *workdir.Manager
	commitMgr  *commitmanager.Manager
	logger     *slog.Logger
}

// NewMerger creates a merger bound to a repository.
func NewMerger(repo *sourcerepo.SourceRepository) *Merger {
	refMgr := refs.NewRefManager(repo)
	return &Merger{
		repo:       repo,
		branchRefs: branch.NewBranchRefManager(refMgr),
		bca:        NewBCAFinder(repo),
		differ:     treediff.NewDiffer(repo),
		workdirMgr: workdir.NewManager(repo),
		commitMgr:  commitmanager.NewManager(repo),
		logger:     logger.With("component", "merge"),
	}
}

// Merge merges the given commit into HEAD and returns the merge commit.
//
// The migration applies the diff from the best common ancestor to the
// merge tip. Paths the current branch also changed surface as stale-file
// conflicts and abort the merge before anything is written.
func (m *Merger) Merge(ctx context.Context, theirs objects.ObjectHash, message string) (*Result, error) {
	if err := m.commitMgr.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize commit manager: %w", err)
	}

	ours, err := m.branchRefs.GetHeadSHA()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	base, err := m.bca.Find(ctx, ours, theirs)
	if err != nil {
		return nil, err
	}

	if base == theirs {
		return nil, NewAlreadyMergedError(theirs)
	}

	m.logger.Info("merging",
		"ours", ours.Short(),
		"theirs", theirs.Short(),
		"base", base.Short())

	changes, err := m.differ.DiffCommits(ctx, base, theirs, nil)
	if err != nil {
		return nil, fmt.Errorf("diff ancestor against merge tip: %w", err)
	}

	applied, err := m.workdirMgr.Migrate(ctx, changes)
	if err != nil {
		return nil, err
	}

	parents := []objects.ObjectHash{ours, theirs}
	commitObj, err := m.commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
		Message:    message,
		Parents:    parents,
		AllowEmpty: true,
	})
	if err != nil {
		return nil, fmt.Errorf("record merge commit: %w", err)
	}

	sha, err := commitObj.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash merge commit: %w", err)
	}

	return &Result{
		CommitSHA: sha,
		BaseSHA:   base,
		Parents:   parents,
		Applied:   applied,
	}, nil
}

// FindBase exposes best-common-ancestor discovery for callers that only
// need the ancestry answer.
func (m *Merger) FindBase(ctx context.Context, left, right objects.ObjectHash) (objects.ObjectHash, error) {
	return m.bca.Find(ctx, left, right)
}

// HeadCommit returns the commit HEAD points at.
func (m *Merger) HeadCommit() (objects.ObjectHash, *commit.Commit, error) {
	sha, err := m.branchRefs.GetHeadSHA()
	if err != nil {
		return "", nil, err
	}
	c, err := m.repo.ReadCommitObject(sha)
	if err != nil {
		return "", nil, err
	}
	return sha, c, nil
}
