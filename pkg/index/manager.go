package index

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/juju/fslock"
	"golang.org/x/text/unicode/norm"

	"github.com/kkeuning/gitcore/pkg/common/fileops"
	"github.com/kkeuning/gitcore/pkg/objects/blob"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/store"
)

// lockWaitTimeout bounds how long we wait for another process to release
// the index lock before giving up.
const lockWaitTimeout = 10 * time.Second

// Manager orchestrates all operations between the working directory,
// the index (staging area), and the repository's object database.
//
// In addition to the in-process mutex, every read-modify-write cycle takes
// an OS-level advisory lock on <index>.lock so that two separate gitcore
// processes never interleave writes to the same index file.
type Manager struct {
	repoRoot  scpath.RepositoryPath
	indexPath scpath.SourcePath
	index     *Index
	mu        sync.RWMutex
}

// NewManager creates a new index manager.
func NewManager(repoRoot scpath.RepositoryPath) *Manager {
	indexPath := repoRoot.SourcePath().IndexPath()
	return &Manager{
		repoRoot:  repoRoot,
		indexPath: indexPath,
		index:     NewIndex(),
	}
}

// withIndexLock acquires the cross-process index lock, runs fn, and always
// releases the lock afterwards. It does not take the in-process mutex;
// callers are expected to hold m.mu themselves.
func (m *Manager) withIndexLock(fn func() error) error {
	lock := fslock.New(m.indexPath.ToAbsolutePath().String() + ".lock")
	if err := lock.LockWithTimeout(lockWaitTimeout); err != nil {
		return fmt.Errorf("acquire index lock: %w", err)
	}
	defer lock.Unlock()

	return fn()
}

// Initialize loads the index from disk.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.withIndexLock(func() error {
		index, err := Read(m.indexPath.ToAbsolutePath())
		if err != nil {
			return fmt.Errorf("failed to load index: %w", err)
		}

		m.index = index
		return nil
	})
}

// AddResult represents the result of adding files to the index.
type AddResult struct {
	Added    []string           // New files added to index
	Modified []string           // Existing files updated in index
	Ignored  []string           // Files skipped due to ignore patterns
	Failed   []AddFailureResult // Files that failed to add
}

// AddFailureResult represents a failed add operation.
type AddFailureResult struct {
	Path   string
	Reason string
}

// Add adds files to the index (like git add). Directory arguments expand
// to every file underneath them, so "add ." stages the whole workspace.
//
// Staging is all-or-nothing: each path is read, hashed, and stored as a
// blob, but the index is only updated and written once every input path
// succeeds. If any path fails, the index (in memory and on disk) is left
// exactly as it was and an error is returned, so a partially-invalid add
// never publishes the valid half.
func (m *Manager) Add(paths []string, objectStore store.ObjectStore) (*AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &AddResult{
		Added:    make([]string, 0),
		Modified: make([]string, 0),
		Ignored:  make([]string, 0),
		Failed:   make([]AddFailureResult, 0),
	}

	var staged []*Entry
	for _, path := range paths {
		filePaths, err := m.expandPath(path)
		if err != nil {
			result.Failed = append(result.Failed, AddFailureResult{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}

		for _, filePath := range filePaths {
			entry, err := m.stageFile(filePath, objectStore)
			if err != nil {
				result.Failed = append(result.Failed, AddFailureResult{
					Path:   filePath,
					Reason: err.Error(),
				})
				continue
			}
			staged = append(staged, entry)
		}
	}

	if len(result.Failed) > 0 {
		failedPaths := make([]string, len(result.Failed))
		for i, f := range result.Failed {
			failedPaths[i] = f.Path
		}
		return result, fmt.Errorf("the following paths could not be added: %s", strings.Join(failedPaths, ", "))
	}

	for _, entry := range staged {
		if m.index.Has(entry.Path) {
			result.Modified = append(result.Modified, entry.Path.String())
		} else {
			result.Added = append(result.Added, entry.Path.String())
		}
		m.index.Add(entry)
	}

	if err := m.saveIndex(); err != nil {
		return result, fmt.Errorf("failed to save index: %w", err)
	}

	return result, nil
}

// expandPath resolves one add argument to the workspace files it names: a
// file maps to itself, a directory to every file underneath it (the
// repository metadata directory excluded).
func (m *Manager) expandPath(path string) ([]string, error) {
	absPath, _, err := m.resolvePaths(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath.String())
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(absPath.String(), func(walked string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == scpath.SourceDir {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, walked)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	return files, nil
}

// stageFile hashes one workspace file into the object database and builds
// its index entry without touching the index itself.
func (m *Manager) stageFile(path string, objectStore store.ObjectStore) (*Entry, error) {
	absPath, relPath, err := m.resolvePaths(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath.String())
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// Read file content
	content, err := fileops.ReadBytesStrict(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Create blob and store it. Stored blobs are content-addressed, so a
	// later abort leaves no visible index change behind.
	b := blob.NewBlob(content)
	hash, err := objectStore.WriteObject(b)
	if err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	entry, err := NewEntryFromFileInfo(relPath, info, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return entry, nil
}

// RemoveResult represents the result of removing files from the index.
type RemoveResult struct {
	Removed []string              // Successfully removed files
	Failed  []RemoveFailureResult // Files that failed to remove
}

// RemoveFailureResult represents a failed remove operation.
type RemoveFailureResult struct {
	Path   string
	Reason string
}

// Remove removes files from the index and optionally from the working directory.
func (m *Manager) Remove(paths []string, deleteFromDisk bool) (*RemoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &RemoveResult{
		Removed: make([]string, 0),
		Failed:  make([]RemoveFailureResult, 0),
	}

	for _, path := range paths {
		absPath, relPath, err := m.resolvePaths(path)
		if err != nil {
			result.Failed = append(result.Failed, RemoveFailureResult{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}

		// Remove drops an exact entry or a whole directory subtree; a
		// false return means nothing was staged under this path.
		if !m.index.Remove(relPath) {
			result.Failed = append(result.Failed, RemoveFailureResult{
				Path:   relPath.String(),
				Reason: "file not in index",
			})
			continue
		}

		result.Removed = append(result.Removed, relPath.String())

		// Optionally delete from disk
		if deleteFromDisk {
			if err := fileops.SafeRemove(absPath); err != nil {
				// File was removed from index but failed to delete from disk
				// We don't add this to Failed since index operation succeeded
			}
		}
	}

	// Save index after all removals
	if err := m.saveIndex(); err != nil {
		return result, fmt.Errorf("failed to save index: %w", err)
	}

	return result, nil
}

// saveIndex writes the index to disk (caller must hold m.mu).
// It takes the cross-process index lock for the duration of the write so
// a concurrent gitcore process cannot observe or produce a torn index file.
func (m *Manager) saveIndex() error {
	return m.withIndexLock(func() error {
		return m.index.Write(m.indexPath.ToAbsolutePath())
	})
}

// resolvePaths converts a path to absolute and relative forms. The stored
// relative path is NFC-normalized so a file staged from a terminal that
// composes characters differently still maps to one index entry.
func (m *Manager) resolvePaths(path string) (scpath.AbsolutePath, scpath.RelativePath, error) {
	var absPath scpath.AbsolutePath

	if filepath.IsAbs(path) {
		absPath = scpath.AbsolutePath(filepath.Clean(path))
	} else {
		absPath = m.repoRoot.Join(path)
	}

	relPath, err := absPath.RelativeTo(m.repoRoot)
	if err != nil {
		return "", "", fmt.Errorf("failed to compute relative path: %w", err)
	}

	relPath = scpath.RelativePath(norm.NFC.String(relPath.String()))
	return absPath, relPath, nil
}

// Read reads an index file from disk.
func Read(path scpath.AbsolutePath) (*Index, error) {
	data, err := fileops.ReadBytes(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	// If file doesn't exist, return empty index
	if data == nil {
		return NewIndex(), nil
	}

	index := NewIndex()
	if err := index.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to deserialize index: %w", err)
	}

	return index, nil
}
