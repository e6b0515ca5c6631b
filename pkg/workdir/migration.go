package workdir

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kkeuning/gitcore/pkg/index"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/treediff"
	"github.com/kkeuning/gitcore/pkg/workdir/internal"
)

// ConflictCategory classifies why a migration cannot touch a path.
type ConflictCategory int

const (
	// StaleFile: the path is tracked but the workspace copy has local
	// modifications that the migration would overwrite or remove.
	StaleFile ConflictCategory = iota
	// StaleDirectory: the path is untracked and is a directory on disk;
	// replacing it would lose the untracked files inside.
	StaleDirectory
	// UntrackedOverwritten: an untracked workspace file sits where the
	// migration wants to write.
	UntrackedOverwritten
	// UntrackedRemoved: an untracked workspace file sits on a path the
	// migration wants to delete.
	UntrackedRemoved
)

// Header returns the user-facing message introducing the category's paths.
func (c ConflictCategory) Header() string {
	switch c {
	case StaleFile:
		return "Your local changes to the following files would be overwritten by checkout:"
	case StaleDirectory:
		return "Updating the following directories would lose untracked files in them:"
	case UntrackedOverwritten:
		return "The following untracked working tree files would be overwritten by checkout:"
	case UntrackedRemoved:
		return "The following untracked working tree files would be removed by checkout:"
	default:
		return "The following paths conflict with checkout:"
	}
}

// Footer returns the user-facing advice closing the category's paths.
func (c ConflictCategory) Footer() string {
	switch c {
	case StaleFile:
		return "Please commit your changes or stash them before you switch branches."
	case StaleDirectory:
		return ""
	default:
		return "Please move or remove them before you switch branches."
	}
}

// ConflictError aggregates every conflicting path, grouped by category.
// A migration that returns one has made no filesystem or index change.
type ConflictError struct {
	Conflicts map[ConflictCategory][]scpath.RelativePath
}

// Error renders the grouped canonical messages.
func (e *ConflictError) Error() string {
	var b strings.Builder

	categories := make([]ConflictCategory, 0, len(e.Conflicts))
	for c := range e.Conflicts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, c := range categories {
		paths := append([]scpath.RelativePath(nil), e.Conflicts[c]...)
		sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

		b.WriteString(c.Header())
		b.WriteString("\n")
		for _, p := range paths {
			b.WriteString("\t")
			b.WriteString(p.String())
			b.WriteString("\n")
		}
		if footer := c.Footer(); footer != "" {
			b.WriteString(footer)
			b.WriteString("\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// MigrationResult summarizes an applied migration.
type MigrationResult struct {
	Created int
	Updated int
	Deleted int
}

// Migrate applies a tree diff to the workspace and index.
//
// Phase 1 plans: the diff is partitioned into creates, updates, and
// deletes, and every affected path is checked for conflicts against the
// index and the workspace. Any conflict aborts the whole migration before
// a single byte is touched.
//
// Phase 2 applies, in order: deletions first (with empty parent directories
// pruned), then creates and updates, then the index is rewritten to match.
func (m *Manager) Migrate(ctx context.Context, changes treediff.Changes) (*MigrationResult, error) {
	if len(changes) == 0 {
		return &MigrationResult{}, nil
	}

	idx, err := index.Read(m.indexPath)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	plan := m.planMigration(changes)

	if err := m.detectConflicts(idx, plan); err != nil {
		return nil, err
	}

	ops := make([]internal.Operation, 0, len(changes))
	for _, path := range plan.deletes {
		ops = append(ops, internal.Operation{Path: path, Action: internal.ActionDelete})
	}
	for _, path := range plan.updates {
		entry := changes[path].New
		ops = append(ops, internal.Operation{Path: path, Action: internal.ActionModify, SHA: entry.SHA, Mode: entry.Mode})
	}
	for _, path := range plan.creates {
		entry := changes[path].New
		ops = append(ops, internal.Operation{Path: path, Action: internal.ActionCreate, SHA: entry.SHA, Mode: entry.Mode})
	}

	txn := m.transaction.ExecuteAtomically(ctx, ops)
	if !txn.Success {
		return nil, fmt.Errorf("apply migration: %w", txn.Err)
	}

	toAdd := make(internal.FileMap, len(plan.creates)+len(plan.updates))
	for _, path := range plan.creates {
		entry := changes[path].New
		toAdd[path] = internal.FileInfo{SHA: entry.SHA, Mode: entry.Mode}
	}
	for _, path := range plan.updates {
		entry := changes[path].New
		toAdd[path] = internal.FileInfo{SHA: entry.SHA, Mode: entry.Mode}
	}

	if _, err := m.indexer.UpdateIncremental(toAdd, plan.deletes); err != nil {
		return nil, fmt.Errorf("update index: %w", err)
	}

	return &MigrationResult{
		Created: len(plan.creates),
		Updated: len(plan.updates),
		Deleted: len(plan.deletes),
	}, nil
}

// MigrateBetween diffs two commits and migrates the workspace from the
// first to the second. Either commit id may be empty (an empty tree).
func (m *Manager) MigrateBetween(ctx context.Context, from, to objects.ObjectHash) (*MigrationResult, error) {
	differ := treediff.NewDiffer(m.repo)
	changes, err := differ.DiffCommits(ctx, from, to, nil)
	if err != nil {
		return nil, fmt.Errorf("diff commits: %w", err)
	}
	return m.Migrate(ctx, changes)
}

// migrationPlan partitions a diff into the three operation groups, each
// sorted for deterministic application order.
type migrationPlan struct {
	creates []scpath.RelativePath
	updates []scpath.RelativePath
	deletes []scpath.RelativePath
}

func (m *Manager) planMigration(changes treediff.Changes) *migrationPlan {
	plan := &migrationPlan{}
	for path, change := range changes {
		switch {
		case change.New == nil:
			plan.deletes = append(plan.deletes, path)
		case change.Old == nil:
			plan.creates = append(plan.creates, path)
		default:
			plan.updates = append(plan.updates, path)
		}
	}

	sortPaths := func(paths []scpath.RelativePath) {
		sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	}
	sortPaths(plan.creates)
	sortPaths(plan.updates)
	sortPaths(plan.deletes)
	return plan
}

// detectConflicts applies the conflict table to every affected path:
//
//	index entry present           -> StaleFile when the workspace differs
//	no entry, path is a directory -> StaleDirectory
//	no entry, file, target keeps  -> UntrackedOverwritten
//	no entry, file, target drops  -> UntrackedRemoved
func (m *Manager) detectConflicts(idx *index.Index, plan *migrationPlan) error {
	conflicts := make(map[ConflictCategory][]scpath.RelativePath)

	record := func(c ConflictCategory, path scpath.RelativePath) {
		conflicts[c] = append(conflicts[c], path)
	}

	check := func(path scpath.RelativePath, targetKeeps bool) {
		entry, tracked := idx.Get(path)
		if tracked {
			differs, err := m.validator.WorkspaceDiffers(entry)
			if err != nil || differs {
				record(StaleFile, path)
			}
			return
		}

		info, err := os.Stat(m.repo.WorkingDirectory().Join(path.String()).String())
		if err != nil {
			// Nothing on disk: an untracked path the migration is free
			// to materialize or skip.
			return
		}

		switch {
		case info.IsDir():
			record(StaleDirectory, path)
		case targetKeeps:
			record(UntrackedOverwritten, path)
		default:
			record(UntrackedRemoved, path)
		}
	}

	for _, path := range plan.deletes {
		check(path, false)
	}
	for _, path := range plan.updates {
		check(path, true)
	}
	for _, path := range plan.creates {
		check(path, true)
	}

	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}
