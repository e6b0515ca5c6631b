package merge

import (
	"fmt"

	"github.com/kkeuning/gitcore/pkg/common/err"
	"github.com/kkeuning/gitcore/pkg/objects"
)

const pkgName = "merge"

// Error codes for merge operations
const (
	CodeNoCommonAncestor = "NO_COMMON_ANCESTOR"
	CodeAlreadyMerged    = "ALREADY_MERGED"
)

// NewNoCommonAncestorError indicates the two commits share no history.
func NewNoCommonAncestorError(left, right objects.ObjectHash) error {
	return err.New(
		pkgName,
		CodeNoCommonAncestor,
		"find_ancestor",
		fmt.Sprintf("no common ancestor between %s and %s", left.Short(), right.Short()),
		nil,
	)
}

// NewAlreadyMergedError indicates the merge target is already reachable
// from HEAD.
func NewAlreadyMergedError(target objects.ObjectHash) error {
	return err.New(
		pkgName,
		CodeAlreadyMerged,
		"merge",
		fmt.Sprintf("already up to date with %s", target.Short()),
		nil,
	)
}
