// Package status classifies every repository path along two independent
// axes: HEAD tree vs index (what is staged) and index vs workspace (what is
// not staged yet).
package status

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/kkeuning/gitcore/pkg/common"
	"github.com/kkeuning/gitcore/pkg/common/logger"
	"github.com/kkeuning/gitcore/pkg/index"
	"github.com/kkeuning/gitcore/pkg/objects/blob"
	"github.com/kkeuning/gitcore/pkg/refs/branch"
	"github.com/kkeuning/gitcore/pkg/repository/ignore"
	"github.com/kkeuning/gitcore/pkg/repository/refs"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/treediff"
)

// WorkspaceChange classifies the index-vs-workspace axis.
type WorkspaceChange int

const (
	WorkspaceUnchanged WorkspaceChange = iota
	WorkspaceModified
	WorkspaceDeleted
	Untracked
)

// IndexChange classifies the HEAD-tree-vs-index axis.
type IndexChange int

const (
	IndexUnchanged IndexChange = iota
	IndexAdded
	IndexModified
	IndexDeleted
)

// PathStatus carries both classifications for one path.
type PathStatus struct {
	Path      scpath.RelativePath
	Index     IndexChange
	Workspace WorkspaceChange
	// IsDir marks an untracked directory reported as a single entry.
	IsDir bool
}

// Report is the full status of the repository at collection time.
type Report struct {
	Branch   string
	Detached bool
	Entries  []PathStatus
}

// Inspector walks the workspace and compares it against the index and the
// HEAD tree.
type Inspector struct {
	repo       *sourcerepo.SourceRepository
	branchRefs *branch.BranchRefManager
	differ     *treediff.Differ
	ignores    *ignore.PatternSet
	logger     *slog.Logger
}

// NewInspector creates an inspector bound to a repository. Ignore patterns
// are loaded from the repository root's ignore file when present.
func NewInspector(repo *sourcerepo.SourceRepository) *Inspector {
	refMgr := refs.NewRefManager(repo)

	patterns := ignore.NewPatternSet()
	ignorePath := repo.WorkingDirectory().Join(scpath.IgnoreFile)
	if data, err := os.ReadFile(ignorePath.String()); err == nil {
		patterns.AddPatternsFromText(string(data), scpath.IgnoreFile)
	}

	return &Inspector{
		repo:       repo,
		branchRefs: branch.NewBranchRefManager(refMgr),
		differ:     treediff.NewDiffer(repo),
		ignores:    patterns,
		logger:     logger.With("component", "status"),
	}
}

// Collect builds the full two-axis report. Entries whose workspace copy is
// byte-identical but carries fresher timestamps get their index metadata
// refreshed and written back, so the next status can skip re-hashing them.
func (i *Inspector) Collect(ctx context.Context) (*Report, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	indexPath := i.repo.SourceDirectory().IndexPath().ToAbsolutePath()
	idx, err := index.Read(indexPath)
	if err != nil {
		return nil, err
	}

	headTree, err := i.headTree(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	i.fillBranch(report)

	statuses := make(map[scpath.RelativePath]*PathStatus)
	at := func(path scpath.RelativePath) *PathStatus {
		s, ok := statuses[path]
		if !ok {
			s = &PathStatus{Path: path}
			statuses[path] = s
		}
		return s
	}

	refreshed := false
	for _, entry := range idx.Entries {
		change, refresh, err := i.classifyWorkspace(entry)
		if err != nil {
			return nil, err
		}
		refreshed = refreshed || refresh
		at(entry.Path).Workspace = change
		at(entry.Path).Index = classifyIndex(entry, headTree)
	}

	for path := range headTree {
		if _, tracked := idx.Get(path); !tracked {
			at(path).Index = IndexDeleted
		}
	}

	untracked, err := i.scanUntracked(idx)
	if err != nil {
		return nil, err
	}
	for _, u := range untracked {
		s := at(u.path)
		s.Workspace = Untracked
		s.IsDir = u.isDir
	}

	if refreshed {
		if err := idx.Write(indexPath); err != nil {
			i.logger.Warn("could not refresh index timestamps", "error", err)
		}
	}

	for _, s := range statuses {
		if s.Index != IndexUnchanged || s.Workspace != WorkspaceUnchanged {
			report.Entries = append(report.Entries, *s)
		}
	}
	sort.Slice(report.Entries, func(a, b int) bool {
		return report.Entries[a].Path < report.Entries[b].Path
	})

	return report, nil
}

// classifyWorkspace compares one index entry against the file on disk.
// Returns the classification and whether the entry's timestamps were
// refreshed in place.
func (i *Inspector) classifyWorkspace(entry *index.Entry) (WorkspaceChange, bool, error) {
	fullPath := i.repo.WorkingDirectory().Join(entry.Path.String())

	info, err := os.Stat(fullPath.String())
	if os.IsNotExist(err) {
		return WorkspaceDeleted, false, nil
	}
	if err != nil {
		return WorkspaceUnchanged, false, err
	}

	if !statMatch(entry, info) {
		return WorkspaceModified, false, nil
	}
	if timesMatch(entry, info) {
		return WorkspaceUnchanged, false, nil
	}

	// Size and mode agree but the timestamps moved: hash the workspace
	// copy to decide, and refresh the entry when the content is intact.
	data, err := os.ReadFile(fullPath.String())
	if err != nil {
		return WorkspaceUnchanged, false, err
	}
	hash, err := blob.NewBlob(data).Hash()
	if err != nil {
		return WorkspaceUnchanged, false, err
	}
	if hash != entry.BlobHash {
		return WorkspaceModified, false, nil
	}

	entry.ModificationTime = common.NewTimestampFromTime(info.ModTime())
	entry.CreationTime = common.NewTimestampFromTime(info.ModTime())
	return WorkspaceUnchanged, true, nil
}

// statMatch gates on the cheap stat fields: mode and size.
func statMatch(entry *index.Entry, info os.FileInfo) bool {
	return uint32(info.Size()) == entry.SizeInBytes &&
		index.ModeFromOS(info.Mode()) == entry.Mode
}

// timesMatch compares ctime and mtime at second and nanosecond precision.
func timesMatch(entry *index.Entry, info os.FileInfo) bool {
	stamp := common.NewTimestampFromTime(info.ModTime())
	return entry.ModificationTime.Equal(stamp) && entry.CreationTime.Equal(stamp)
}

func classifyIndex(entry *index.Entry, headTree map[scpath.RelativePath]treediff.DatabaseEntry) IndexChange {
	head, ok := headTree[entry.Path]
	if !ok {
		return IndexAdded
	}
	if head.SHA != entry.BlobHash || head.Mode.IsExecutable() != entry.Mode.IsExecutable() {
		return IndexModified
	}
	return IndexUnchanged
}

func (i *Inspector) headTree(ctx context.Context) (map[scpath.RelativePath]treediff.DatabaseEntry, error) {
	headSHA, err := i.branchRefs.GetHeadSHA()
	if err != nil {
		// No commits yet: everything staged counts as added.
		return map[scpath.RelativePath]treediff.DatabaseEntry{}, nil
	}

	c, err := i.repo.ReadCommitObject(headSHA)
	if err != nil {
		return nil, err
	}
	return i.differ.Flatten(ctx, c.TreeSHA)
}

func (i *Inspector) fillBranch(report *Report) {
	name, err := i.branchRefs.Current()
	if err == nil && name != "" {
		report.Branch = name
		return
	}
	report.Detached = true
	if sha, err := i.branchRefs.GetHeadSHA(); err == nil {
		report.Branch = sha.Short().String()
	}
}

// untrackedEntry is one reported untracked path: a file, or a directory
// that contains only untracked files.
type untrackedEntry struct {
	path  scpath.RelativePath
	isDir bool
}

// scanUntracked walks the workspace, skipping the repository metadata
// directory and ignored paths. A directory containing untracked files and
// no tracked ones is collapsed into a single entry; empty directories are
// suppressed.
func (i *Inspector) scanUntracked(idx *index.Index) ([]untrackedEntry, error) {
	var out []untrackedEntry
	_, _, err := i.scanDir(idx, "", &out)
	return out, err
}

// scanDir returns (hasTracked, hasUntracked) for the directory and appends
// reportable untracked entries to out.
func (i *Inspector) scanDir(idx *index.Index, dir scpath.RelativePath, out *[]untrackedEntry) (bool, bool, error) {
	absDir := i.repo.WorkingDirectory().Join(dir.String())
	entries, err := os.ReadDir(absDir.String())
	if err != nil {
		return false, false, err
	}

	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	hasTracked := false
	hasUntracked := false

	for _, e := range entries {
		name := e.Name()
		if dir == "" && name == scpath.SourceDir {
			continue
		}

		var path scpath.RelativePath
		if dir == "" {
			path = scpath.RelativePath(name)
		} else {
			path = dir.Join(name)
		}

		if i.ignores.IsIgnored(path.String(), e.IsDir(), "") {
			continue
		}

		if e.IsDir() {
			var sub []untrackedEntry
			subTracked, subUntracked, err := i.scanDir(idx, path, &sub)
			if err != nil {
				return false, false, err
			}
			hasTracked = hasTracked || subTracked
			hasUntracked = hasUntracked || subUntracked

			switch {
			case subTracked:
				*out = append(*out, sub...)
			case subUntracked:
				*out = append(*out, untrackedEntry{path: path, isDir: true})
			}
			continue
		}

		if _, tracked := idx.Get(path); tracked {
			hasTracked = true
		} else {
			hasUntracked = true
			*out = append(*out, untrackedEntry{path: path})
		}
	}

	return hasTracked, hasUntracked, nil
}

// Porcelain renders the two-character-per-line machine format: the staged
// column, the workspace column, a space, then the path. Untracked entries
// use "??", and collapsed directories carry a trailing slash.
func (r *Report) Porcelain() string {
	var b strings.Builder
	for _, e := range r.Entries {
		b.WriteString(porcelainCode(e))
		b.WriteString(" ")
		b.WriteString(e.Path.String())
		if e.IsDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func porcelainCode(e PathStatus) string {
	if e.Workspace == Untracked {
		return "??"
	}

	indexCol := " "
	switch e.Index {
	case IndexAdded:
		indexCol = "A"
	case IndexModified:
		indexCol = "M"
	case IndexDeleted:
		indexCol = "D"
	}

	workCol := " "
	switch e.Workspace {
	case WorkspaceModified:
		workCol = "M"
	case WorkspaceDeleted:
		workCol = "D"
	}

	return indexCol + workCol
}
