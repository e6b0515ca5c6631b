package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/kkeuning/gitcore/pkg/index"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/blob"
	"github.com/kkeuning/gitcore/pkg/pathfilter"
	"github.com/kkeuning/gitcore/pkg/refs/branch"
	"github.com/kkeuning/gitcore/pkg/repository/refs"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/revision"
	"github.com/kkeuning/gitcore/pkg/treediff"
)

func newDiffCmd() *cobra.Command {
	var cached bool
	var nameStatus bool
	var diffFilter string

	cmd := &cobra.Command{
		Use:   "diff [--cached] [<rev>] [<rev>] [-- <paths>...]",
		Short: "Show changes between commits, the index, and the working tree",
		Long: `Show changes as a unified diff.

With no revisions, compares the working tree against the index
(or the index against HEAD with --cached). With one revision, compares
that commit's tree against the working tree. With two revisions, compares
the two trees. Paths after "--" restrict the diff.

--name-status prints one "<code>\t<path>" line per change instead of the
patch; --diff-filter restricts the listed changes to the named codes
(A=added, M=modified, D=deleted).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			revArgs, pathArgs := splitAtDash(cmd, args)
			if len(revArgs) > 2 {
				return fmt.Errorf("diff takes at most two revisions")
			}

			var filter *pathfilter.Filter
			if len(pathArgs) > 0 {
				filter = pathfilter.FromStrings(pathArgs)
			}

			ctx := context.Background()
			resolver := revision.NewResolver(repo)

			var files []patchFile
			switch len(revArgs) {
			case 2:
				files, err = diffRevToRev(ctx, repo, resolver, revArgs[0], revArgs[1], filter)
			case 1:
				files, err = diffRevToWorkspace(ctx, repo, resolver, revArgs[0], filter)
			default:
				if cached {
					files, err = diffIndexToHead(ctx, repo, filter)
				} else {
					files, err = diffWorkspaceToIndex(repo, filter)
				}
			}
			if err != nil {
				return err
			}

			if nameStatus {
				printNameStatus(os.Stdout, files, diffFilter)
				return nil
			}

			renderPatchFiles(os.Stdout, files)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Compare the index against HEAD")
	cmd.Flags().BoolVar(&nameStatus, "name-status", false, "Show only change codes and paths")
	cmd.Flags().StringVar(&diffFilter, "diff-filter", "", "Restrict to changes of the given codes (e.g. AD)")

	return cmd
}

// printNameStatus writes the "<code>\t<path>" listing, sorted by path (the
// incoming files already are). An empty filter keeps every code.
func printNameStatus(w io.Writer, files []patchFile, filter string) {
	for _, f := range files {
		code := "M"
		switch {
		case f.oldData == nil:
			code = "A"
		case f.newData == nil:
			code = "D"
		}

		if filter != "" && !strings.Contains(filter, code) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", code, f.path)
	}
}

// diffRevToRev renders the delta between two committed trees.
func diffRevToRev(ctx context.Context, repo *sourcerepo.SourceRepository, resolver *revision.Resolver, oldRev, newRev string, filter *pathfilter.Filter) ([]patchFile, error) {
	oldSHA, err := resolver.ResolveCommit(oldRev)
	if err != nil {
		return nil, err
	}
	newSHA, err := resolver.ResolveCommit(newRev)
	if err != nil {
		return nil, err
	}

	changes, err := treediff.NewDiffer(repo).DiffCommits(ctx, oldSHA, newSHA, filter)
	if err != nil {
		return nil, err
	}
	return patchFilesFromChanges(repo, changes)
}

// diffWorkspaceToIndex compares every tracked file's workspace copy with
// its staged blob. Untracked files are not part of the diff.
func diffWorkspaceToIndex(repo *sourcerepo.SourceRepository, filter *pathfilter.Filter) ([]patchFile, error) {
	idx, err := readRepoIndex(repo)
	if err != nil {
		return nil, err
	}

	var files []patchFile
	for _, entry := range idx.Entries {
		if filter != nil && !filter.Matches(entry.Path) {
			continue
		}

		oldData, err := blobBytes(repo, entry.BlobHash)
		if err != nil {
			return nil, err
		}

		file := patchFile{
			path:    entry.Path.String(),
			oldData: oldData,
			oldID:   entry.BlobHash.Short().String(),
			oldMode: modeOctal(entry),
		}

		workPath := repo.WorkingDirectory().Join(entry.Path.String())
		newData, readErr := os.ReadFile(workPath.String())
		if readErr != nil {
			if !os.IsNotExist(readErr) {
				return nil, readErr
			}
			// Deleted in the workspace.
			files = append(files, file)
			continue
		}

		info, err := os.Stat(workPath.String())
		if err != nil {
			return nil, err
		}

		newHash, err := blob.NewBlob(newData).Hash()
		if err != nil {
			return nil, err
		}
		newMode := index.ModeFromOS(info.Mode())
		if newHash == entry.BlobHash && newMode == entry.Mode {
			continue
		}

		file.newData = newData
		file.newID = newHash.Short().String()
		file.newMode = objects.FileMode(newMode).ToOctalString()
		files = append(files, file)
	}

	return files, nil
}

// diffIndexToHead compares the staged blobs with the HEAD tree.
func diffIndexToHead(ctx context.Context, repo *sourcerepo.SourceRepository, filter *pathfilter.Filter) ([]patchFile, error) {
	idx, err := readRepoIndex(repo)
	if err != nil {
		return nil, err
	}

	headTree, err := headFlatTree(ctx, repo)
	if err != nil {
		return nil, err
	}

	changes := make(treediff.Changes)
	for _, entry := range idx.Entries {
		if filter != nil && !filter.Matches(entry.Path) {
			continue
		}
		head, inHead := headTree[entry.Path]
		staged := &treediff.DatabaseEntry{SHA: entry.BlobHash, Mode: gitMode(entry)}
		if !inHead {
			changes[entry.Path] = treediff.Change{New: staged}
			continue
		}
		if head.SHA != entry.BlobHash || head.Mode != staged.Mode {
			old := head
			changes[entry.Path] = treediff.Change{Old: &old, New: staged}
		}
	}
	for path, head := range headTree {
		if filter != nil && !filter.Matches(path) {
			continue
		}
		if _, tracked := idx.Get(path); !tracked {
			old := head
			changes[path] = treediff.Change{Old: &old}
		}
	}

	return patchFilesFromChanges(repo, changes)
}

// diffRevToWorkspace compares a commit's tree against the files on disk.
func diffRevToWorkspace(ctx context.Context, repo *sourcerepo.SourceRepository, resolver *revision.Resolver, rev string, filter *pathfilter.Filter) ([]patchFile, error) {
	sha, err := resolver.ResolveCommit(rev)
	if err != nil {
		return nil, err
	}
	c, err := repo.ReadCommitObject(sha)
	if err != nil {
		return nil, err
	}
	flat, err := treediff.NewDiffer(repo).Flatten(ctx, c.TreeSHA)
	if err != nil {
		return nil, err
	}

	idx, err := readRepoIndex(repo)
	if err != nil {
		return nil, err
	}

	// The comparison set is every path in the tree plus every tracked
	// path, so additions since the commit show up too.
	paths := make(map[scpath.RelativePath]bool, len(flat))
	for p := range flat {
		paths[p] = true
	}
	for _, entry := range idx.Entries {
		paths[entry.Path] = true
	}

	sorted := make([]scpath.RelativePath, 0, len(paths))
	for p := range paths {
		if filter == nil || filter.Matches(p) {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var files []patchFile
	for _, p := range sorted {
		file := patchFile{path: p.String(), oldID: absentID, newID: absentID}

		if tree, ok := flat[p]; ok {
			data, err := blobBytes(repo, tree.SHA)
			if err != nil {
				return nil, err
			}
			file.oldData = data
			file.oldID = tree.SHA.Short().String()
			file.oldMode = tree.Mode.ToOctalString()
		}

		workPath := repo.WorkingDirectory().Join(p.String())
		if data, err := os.ReadFile(workPath.String()); err == nil {
			hash, err := blob.NewBlob(data).Hash()
			if err != nil {
				return nil, err
			}
			file.newData = data
			file.newID = hash.Short().String()
			file.newMode = file.oldMode
			if file.newMode == "" {
				file.newMode = objects.FileModeRegular.ToOctalString()
			}
		}

		if file.oldData == nil && file.newData == nil {
			continue
		}
		if file.oldID == file.newID {
			continue
		}
		files = append(files, file)
	}

	return files, nil
}

func readRepoIndex(repo *sourcerepo.SourceRepository) (*index.Index, error) {
	return index.Read(repo.SourceDirectory().IndexPath().ToAbsolutePath())
}

func headFlatTree(ctx context.Context, repo *sourcerepo.SourceRepository) (map[scpath.RelativePath]treediff.DatabaseEntry, error) {
	branchRefs := branch.NewBranchRefManager(refs.NewRefManager(repo))
	headSHA, err := branchRefs.GetHeadSHA()
	if err != nil {
		return map[scpath.RelativePath]treediff.DatabaseEntry{}, nil
	}
	c, err := repo.ReadCommitObject(headSHA)
	if err != nil {
		return nil, err
	}
	return treediff.NewDiffer(repo).Flatten(ctx, c.TreeSHA)
}

// gitMode maps an index entry's stored mode onto the tree-object mode set.
func gitMode(entry *index.Entry) objects.FileMode {
	if entry.Mode.IsExecutable() {
		return objects.FileModeExecutable
	}
	return objects.FileModeRegular
}

func modeOctal(entry *index.Entry) string {
	return gitMode(entry).ToOctalString()
}
