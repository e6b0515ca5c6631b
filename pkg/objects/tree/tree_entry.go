package tree

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
)

const (
	SHALengthBytes = 20
)

// TreeEntry represents a single entry in a Git tree object.
//
// Each entry contains:
// - mode: File permissions and type (FileMode)
// - name: Filename or directory name (RelativePath)
// - sha: SHA-1 hash of the referenced object (ObjectHash)
//
// Entry types by mode:
// - 040000: Directory (tree object)
// - 100644: Regular file (blob object)
// - 100755: Executable file (blob object)
// - 120000: Symbolic link (blob object)
// - 160000: Git submodule (commit object)
//
// Serialized format in tree object:
// [mode] [space] [filename] [null byte] [20-byte SHA-1 binary]
//
// Example serialized entry for "hello.txt" file:
// "100644 hello.txt\0[20 bytes of SHA-1]"
type TreeEntry struct {
	mode objects.FileMode
	name scpath.RelativePath
	sha  objects.ObjectHash
}

// NewTreeEntry creates a new TreeEntry with validation
func NewTreeEntry(mode objects.FileMode, name scpath.RelativePath, sha objects.ObjectHash) (*TreeEntry, error) {
	if !name.IsValid() || name.Normalize() == "." {
		return nil, fmt.Errorf("invalid path: %s", name)
	}

	if err := sha.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SHA: %w", err)
	}

	entry := &TreeEntry{
		mode: mode,
		name: name.Normalize(),
		sha:  sha,
	}

	return entry, nil
}

// NewTreeEntryFromStrings creates a new TreeEntry from string values (for backward compatibility)
func NewTreeEntryFromStrings(modeStr, name, shaStr string) (*TreeEntry, error) {
	mode, err := objects.FromOctalString(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid mode: %w", err)
	}

	path, err := scpath.NewRelativePath(name)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	sha, err := objects.ParseObjectHash(shaStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SHA: %w", err)
	}

	return NewTreeEntry(mode, path, sha)
}

// Mode returns the entry mode
func (e *TreeEntry) Mode() objects.FileMode {
	return e.mode
}

// Name returns the entry name
func (e *TreeEntry) Name() string {
	return e.name.String()
}

// Path returns the entry path
func (e *TreeEntry) Path() scpath.RelativePath {
	return e.name
}

// SHA returns the entry SHA-1 hash
func (e *TreeEntry) SHA() objects.ObjectHash {
	return e.sha
}

// IsDirectory returns true if this entry is a directory
func (e *TreeEntry) IsDirectory() bool {
	return e.mode == objects.FileModeDirectory
}

// IsFile returns true if this entry is a regular or executable file
func (e *TreeEntry) IsFile() bool {
	return e.mode == objects.FileModeRegular || e.mode == objects.FileModeExecutable
}

// IsExecutable returns true if this entry is an executable file
func (e *TreeEntry) IsExecutable() bool {
	return e.mode == objects.FileModeExecutable
}

// IsSymbolicLink returns true if this entry is a symbolic link
func (e *TreeEntry) IsSymbolicLink() bool {
	return e.mode == objects.FileModeSymlink
}

// IsSubmodule returns true if this entry is a submodule
func (e *TreeEntry) IsSubmodule() bool {
	return e.mode == objects.FileModeGitlink
}

// Serialize writes the serialized entry to the provided writer
// Format: [mode] [space] [filename] [null byte] [20-byte SHA-1 binary]
func (e *TreeEntry) Serialize(w io.Writer) error {
	// Write mode, space, and filename. The mode carries no leading zero
	// so directory entries serialize as "40000", matching the reference
	// wire format.
	if _, err := fmt.Fprintf(w, "%s %s%c", e.mode.ToWireString(), e.name.String(), objects.NullByte); err != nil {
		return fmt.Errorf("failed to write entry header: %w", err)
	}

	// Write SHA bytes
	shaBytes, err := e.sha.Bytes()
	if err != nil {
		return fmt.Errorf("failed to get SHA bytes: %w", err)
	}

	if _, err := w.Write(shaBytes); err != nil {
		return fmt.Errorf("failed to write SHA bytes: %w", err)
	}

	return nil
}

// CompareTo compares this entry with another entry using the tree-sort
// order: byte comparison of names with a virtual trailing slash appended
// to directory names.
// Returns a negative value if this entry is less than the other, zero if they are equal,
// or a positive value if this entry is greater than the other.
func (e *TreeEntry) CompareTo(other *TreeEntry) int {
	a, b := e.sortKey(), other.sortKey()
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// sortKey is the name with a virtual trailing slash for directories,
// implementing the reference tree-sort order: "foo.txt" sorts before a
// "foo" directory because "foo.txt" < "foo/".
func (e *TreeEntry) sortKey() string {
	if e.IsDirectory() {
		return e.name.String() + "/"
	}
	return e.name.String()
}

// Deserialize reads one serialized entry from the reader, consuming
// exactly the entry's bytes: "<mode> <name>\0<20-byte-sha>".
func (e *TreeEntry) Deserialize(r *bytes.Reader) error {
	mode, err := readUntil(r, objects.SpaceByte)
	if err != nil {
		return fmt.Errorf("invalid tree entry: %w", err)
	}

	name, err := readUntil(r, objects.NullByte)
	if err != nil {
		return fmt.Errorf("invalid tree entry: %w", err)
	}

	shaBytes := make([]byte, SHALengthBytes)
	if _, err := io.ReadFull(r, shaBytes); err != nil {
		return fmt.Errorf("invalid tree entry: incomplete SHA: %w", err)
	}

	parsed, err := NewTreeEntryFromStrings(string(mode), string(name), hex.EncodeToString(shaBytes))
	if err != nil {
		return err
	}

	*e = *parsed
	return nil
}

// readUntil consumes bytes up to (and including) the delimiter, returning
// everything before it.
func readUntil(r *bytes.Reader, delim byte) ([]byte, error) {
	var out []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == delim {
			return out, nil
		}
		out = append(out, b)
	}
}

// DeserializeTreeEntry creates a TreeEntry from serialized data
func DeserializeTreeEntry(data []byte, offset int) (*TreeEntry, int, error) {
	spaceIndex := bytes.IndexByte(data[offset:], objects.SpaceByte)
	if spaceIndex == -1 {
		return nil, 0, fmt.Errorf("invalid tree entry: missing space")
	}
	spaceIndex += offset

	modeStr := string(data[offset:spaceIndex])

	nullIndex := bytes.IndexByte(data[spaceIndex+1:], objects.NullByte)
	if nullIndex == -1 {
		return nil, 0, fmt.Errorf("invalid tree entry: missing null byte")
	}
	nullIndex += spaceIndex + 1

	nameStr := string(data[spaceIndex+1 : nullIndex])

	// Extract SHA bytes
	start := nullIndex + 1
	end := start + SHALengthBytes
	if end > len(data) {
		return nil, 0, fmt.Errorf("invalid tree entry: incomplete SHA")
	}

	shaBytes := data[start:end]
	shaStr := hex.EncodeToString(shaBytes)

	entry, err := NewTreeEntryFromStrings(modeStr, nameStr, shaStr)
	if err != nil {
		return nil, 0, err
	}

	return entry, end, nil
}
