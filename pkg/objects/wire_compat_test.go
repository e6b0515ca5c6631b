package objects_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/blob"
	"github.com/kkeuning/gitcore/pkg/objects/commit"
	"github.com/kkeuning/gitcore/pkg/objects/tree"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
)

// These hashes are what the reference implementation produces for the same
// byte-exact inputs; any drift in the wire format shows up here first.

func TestBlobHashMatchesReference(t *testing.T) {
	b := blob.NewBlob([]byte("hello\n"))

	hash, err := b.Hash()
	require.NoError(t, err)
	require.Equal(t, objects.ObjectHash("ce013625030ba8dba906f756967f9e9ca394464a"), hash)
}

func TestTreeHashMatchesReference(t *testing.T) {
	entry, err := tree.NewTreeEntry(
		objects.FileModeRegular,
		scpath.RelativePath("hello.txt"),
		objects.ObjectHash("ce013625030ba8dba906f756967f9e9ca394464a"),
	)
	require.NoError(t, err)

	hash, err := tree.NewTree([]*tree.TreeEntry{entry}).Hash()
	require.NoError(t, err)
	require.Equal(t, objects.ObjectHash("aaa96ced2d9a1c8e72c56b253a0e2fe78393feb7"), hash)
}

func TestCommitHashMatchesReference(t *testing.T) {
	person, err := commit.NewCommitPerson(
		"A. U. Thor",
		"author@example.com",
		time.Unix(1700000000, 0).UTC(),
	)
	require.NoError(t, err)

	c, err := commit.NewCommitBuilder().
		Tree("aaa96ced2d9a1c8e72c56b253a0e2fe78393feb7").
		Author(person).
		Committer(person).
		Message("first\n").
		Build()
	require.NoError(t, err)

	hash, err := c.Hash()
	require.NoError(t, err)
	require.Equal(t, objects.ObjectHash("5748e97dd2f62dcc3b058143125d4135c7181733"), hash)
}
