// Package treediff computes the per-path delta between two tree objects.
//
// The differ walks both trees in parallel and yields, for every path that
// differs, the (old, new) database entries. A nil side means the path was
// created or deleted. Subtrees whose names cannot match the supplied path
// filter are pruned without being loaded.
package treediff

import (
	"context"
	"maps"

	pool "github.com/kkeuning/gitcore/pkg/common/concurrency"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/tree"
	"github.com/kkeuning/gitcore/pkg/pathfilter"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
)

// DatabaseEntry is one side of a change: the object id and file mode a path
// has within a tree.
type DatabaseEntry struct {
	SHA  objects.ObjectHash
	Mode objects.FileMode
}

// Equal reports whether two entries reference the same object with the same
// mode.
func (e *DatabaseEntry) Equal(other *DatabaseEntry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.SHA == other.SHA && e.Mode == other.Mode
}

// Change is the delta for a single path. Old == nil means the path was
// created, New == nil means it was deleted, both set means it was modified.
type Change struct {
	Old *DatabaseEntry
	New *DatabaseEntry
}

// Changes maps repository-relative paths to their deltas.
type Changes map[scpath.RelativePath]Change

// Differ walks pairs of trees read from a repository's object database.
type Differ struct {
	repo *sourcerepo.SourceRepository
}

// NewDiffer creates a differ bound to a repository.
func NewDiffer(repo *sourcerepo.SourceRepository) *Differ {
	return &Differ{repo: repo}
}

// DiffCommits diffs the root trees of two commits. Either side may be the
// empty hash, which stands for an empty tree.
func (d *Differ) DiffCommits(ctx context.Context, oldCommit, newCommit objects.ObjectHash, filter *pathfilter.Filter) (Changes, error) {
	oldTree, err := d.commitTree(oldCommit)
	if err != nil {
		return nil, err
	}
	newTree, err := d.commitTree(newCommit)
	if err != nil {
		return nil, err
	}
	return d.DiffTrees(ctx, oldTree, newTree, filter)
}

// DiffTrees diffs two trees by id. Either side may be the empty hash, which
// stands for an empty tree.
func (d *Differ) DiffTrees(ctx context.Context, oldTree, newTree objects.ObjectHash, filter *pathfilter.Filter) (Changes, error) {
	if oldTree == newTree {
		return Changes{}, nil
	}

	oldT, err := d.loadTree(oldTree)
	if err != nil {
		return nil, err
	}
	newT, err := d.loadTree(newTree)
	if err != nil {
		return nil, err
	}

	return d.compare(ctx, oldT, newT, scpath.RelativePath(""), filter)
}

// Flatten collects every file reachable from a tree into a path -> entry
// map, the "HeadTree" view used by the status inspector.
func (d *Differ) Flatten(ctx context.Context, treeSHA objects.ObjectHash) (map[scpath.RelativePath]DatabaseEntry, error) {
	changes, err := d.DiffTrees(ctx, "", treeSHA, nil)
	if err != nil {
		return nil, err
	}

	flat := make(map[scpath.RelativePath]DatabaseEntry, len(changes))
	for path, change := range changes {
		if change.New != nil {
			flat[path] = *change.New
		}
	}
	return flat, nil
}

func (d *Differ) commitTree(commitSHA objects.ObjectHash) (objects.ObjectHash, error) {
	if commitSHA == "" {
		return "", nil
	}
	c, err := d.repo.ReadCommitObject(commitSHA)
	if err != nil {
		return "", err
	}
	return c.TreeSHA, nil
}

func (d *Differ) loadTree(treeSHA objects.ObjectHash) (*tree.Tree, error) {
	if treeSHA == "" {
		return tree.NewEmptyTree(), nil
	}
	return d.repo.ReadTreeObject(treeSHA)
}

// subdirTask queues a one- or two-sided recursion into a subtree. The empty
// hash stands for an absent side.
type subdirTask struct {
	oldSHA objects.ObjectHash
	newSHA objects.ObjectHash
	path   scpath.RelativePath
	filter *pathfilter.Filter
}

func sameEntry(a, b *tree.TreeEntry) bool {
	return a.SHA() == b.SHA() && a.Mode() == b.Mode()
}

// compare recursively diffs two trees under a common path prefix.
func (d *Differ) compare(ctx context.Context, oldT, newT *tree.Tree, prefix scpath.RelativePath, filter *pathfilter.Filter) (Changes, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	oldEntries := entriesByName(oldT)
	newEntries := entriesByName(newT)

	changes := make(Changes)
	var subdirs []subdirTask

	for name, oldEntry := range oldEntries {
		childFilter, covered := filter.Descend(name)
		if !covered {
			continue
		}
		path := joinPrefix(prefix, name)
		newEntry := newEntries[name]

		switch {
		case newEntry == nil:
			d.recordSide(&subdirs, changes, path, oldEntry, true, childFilter)
		case sameEntry(oldEntry, newEntry):
			// unchanged
		case oldEntry.IsDirectory() && newEntry.IsDirectory():
			subdirs = append(subdirs, subdirTask{oldEntry.SHA(), newEntry.SHA(), path, childFilter})
		case oldEntry.IsDirectory():
			// Directory replaced by a file: everything under the old
			// tree is deleted, and the file appears.
			subdirs = append(subdirs, subdirTask{oldEntry.SHA(), "", path, childFilter})
			changes[path] = Change{New: &DatabaseEntry{SHA: newEntry.SHA(), Mode: newEntry.Mode()}}
		case newEntry.IsDirectory():
			// File replaced by a directory: the file is deleted, and
			// the new tree's contents appear.
			changes[path] = Change{Old: &DatabaseEntry{SHA: oldEntry.SHA(), Mode: oldEntry.Mode()}}
			subdirs = append(subdirs, subdirTask{"", newEntry.SHA(), path, childFilter})
		default:
			changes[path] = Change{
				Old: &DatabaseEntry{SHA: oldEntry.SHA(), Mode: oldEntry.Mode()},
				New: &DatabaseEntry{SHA: newEntry.SHA(), Mode: newEntry.Mode()},
			}
		}
	}

	for name, newEntry := range newEntries {
		if _, existed := oldEntries[name]; existed {
			continue
		}
		childFilter, covered := filter.Descend(name)
		if !covered {
			continue
		}
		path := joinPrefix(prefix, name)
		d.recordSide(&subdirs, changes, path, newEntry, false, childFilter)
	}

	if len(subdirs) == 0 {
		return changes, nil
	}

	if len(subdirs) == 1 {
		task := subdirs[0]
		sub, err := d.diffSubtrees(ctx, task.oldSHA, task.newSHA, task.path, task.filter)
		if err != nil {
			return nil, err
		}
		maps.Copy(changes, sub)
		return changes, nil
	}

	wp := pool.NewWorkerPool[subdirTask, Changes]()
	results, err := wp.Process(ctx, subdirs, func(ctx context.Context, task subdirTask) (Changes, error) {
		return d.diffSubtrees(ctx, task.oldSHA, task.newSHA, task.path, task.filter)
	})
	if err != nil {
		return nil, err
	}

	for _, sub := range results {
		maps.Copy(changes, sub)
	}
	return changes, nil
}

// recordSide registers an entry that exists on only one side of the diff:
// a leaf becomes a single create/delete change, a directory is queued for a
// one-sided recursion.
func (d *Differ) recordSide(subdirs *[]subdirTask, changes Changes, path scpath.RelativePath, e *tree.TreeEntry, isOld bool, filter *pathfilter.Filter) {
	entry := &DatabaseEntry{SHA: e.SHA(), Mode: e.Mode()}

	if e.IsDirectory() {
		if isOld {
			*subdirs = append(*subdirs, subdirTask{oldSHA: e.SHA(), path: path, filter: filter})
		} else {
			*subdirs = append(*subdirs, subdirTask{newSHA: e.SHA(), path: path, filter: filter})
		}
		return
	}

	if isOld {
		changes[path] = Change{Old: entry}
	} else {
		changes[path] = Change{New: entry}
	}
}

func (d *Differ) diffSubtrees(ctx context.Context, oldSHA, newSHA objects.ObjectHash, prefix scpath.RelativePath, filter *pathfilter.Filter) (Changes, error) {
	oldT, err := d.loadTree(oldSHA)
	if err != nil {
		return nil, err
	}
	newT, err := d.loadTree(newSHA)
	if err != nil {
		return nil, err
	}
	return d.compare(ctx, oldT, newT, prefix, filter)
}

func entriesByName(t *tree.Tree) map[string]*tree.TreeEntry {
	byName := make(map[string]*tree.TreeEntry, len(t.Entries()))
	for _, e := range t.Entries() {
		byName[e.Name()] = e
	}
	return byName
}

func joinPrefix(prefix scpath.RelativePath, name string) scpath.RelativePath {
	if prefix == "" {
		return scpath.RelativePath(name)
	}
	return prefix.Join(name)
}
