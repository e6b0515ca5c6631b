package index

import (
	"testing"

	"github.com/kkeuning/gitcore/pkg/repository/scpath"
)

func pathsOf(idx *Index) []string {
	out := make([]string, 0, idx.Count())
	for _, e := range idx.Entries {
		out = append(out, e.Path.String())
	}
	return out
}

func addPath(idx *Index, path string) {
	entry := NewEntry(scpath.RelativePath(path))
	entry.BlobHash = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0"
	idx.Add(entry)
}

// A file entry replaces a whole staged directory subtree of the same name.
func TestIndexAddFileReplacesDirectory(t *testing.T) {
	idx := NewIndex()

	addPath(idx, "a/b.txt")
	addPath(idx, "a/c/d.txt")
	addPath(idx, "other.txt")

	addPath(idx, "a")

	got := pathsOf(idx)
	want := []string{"a", "other.txt"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// A nested entry evicts any staged file that now names one of its parent
// directories.
func TestIndexAddDirectoryReplacesFile(t *testing.T) {
	idx := NewIndex()

	addPath(idx, "a")
	addPath(idx, "other.txt")

	addPath(idx, "a/b/c.txt")

	got := pathsOf(idx)
	want := []string{"a/b/c.txt", "other.txt"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// Every ancestor-named file is evicted, not just the immediate parent.
func TestIndexAddEvictsAllAncestorFiles(t *testing.T) {
	idx := NewIndex()

	addPath(idx, "a")

	addPath(idx, "a/b/c/d.txt")

	if idx.Count() != 1 {
		t.Fatalf("Count() = %v, want 1", idx.Count())
	}
	if idx.Entries[0].Path.String() != "a/b/c/d.txt" {
		t.Errorf("remaining path = %v, want a/b/c/d.txt", idx.Entries[0].Path)
	}
}

// Sibling paths that merely share a name prefix are not directory
// conflicts.
func TestIndexAddPrefixSiblingIsNotConflict(t *testing.T) {
	idx := NewIndex()

	addPath(idx, "foo")
	addPath(idx, "foobar")

	if idx.Count() != 2 {
		t.Fatalf("Count() = %v, want 2", idx.Count())
	}
}

func TestIndexRemoveDirectorySubtree(t *testing.T) {
	idx := NewIndex()

	addPath(idx, "a/b.txt")
	addPath(idx, "a/c/d.txt")
	addPath(idx, "other.txt")

	if !idx.Remove(scpath.RelativePath("a")) {
		t.Fatal("Remove(a) = false, want true")
	}

	got := pathsOf(idx)
	if len(got) != 1 || got[0] != "other.txt" {
		t.Fatalf("paths = %v, want [other.txt]", got)
	}

	if idx.Remove(scpath.RelativePath("missing")) {
		t.Error("Remove(missing) = true, want false")
	}
}

// After any sequence of mutations no stored path is a strict directory
// prefix of another, and entries stay ordered.
func TestIndexInvariantsHoldAfterMutations(t *testing.T) {
	idx := NewIndex()

	for _, p := range []string{"x/y.txt", "x", "x/z/q.txt", "a.txt", "x/z"} {
		addPath(idx, p)
	}

	for i, e := range idx.Entries {
		for j, other := range idx.Entries {
			if i == j {
				continue
			}
			if isPrefixDir(e.Path, other.Path) {
				t.Errorf("entry %q is a directory prefix of %q", e.Path, other.Path)
			}
		}
		if i > 0 && idx.Entries[i-1].Path >= e.Path {
			t.Errorf("entries out of order: %q >= %q", idx.Entries[i-1].Path, e.Path)
		}
	}
}
