package revision

import (
	"fmt"

	"github.com/kkeuning/gitcore/pkg/common/err"
)

const pkgName = "revision"

// Error codes for revision resolution
const (
	CodeUnknownRevision   = "UNKNOWN_REVISION"
	CodeAmbiguousRevision = "AMBIGUOUS_REVISION"
	CodeInvalidRevision   = "INVALID_REVISION"
	CodeNoHead            = "NO_HEAD"
)

// NewUnknownRevisionError indicates an expression that resolves to nothing.
func NewUnknownRevisionError(expr string) error {
	return err.New(
		pkgName,
		CodeUnknownRevision,
		"resolve",
		fmt.Sprintf("unknown revision '%s'", expr),
		nil,
	)
}

// NewAmbiguousRevisionError indicates an abbreviated id with more than one
// match in the object database.
func NewAmbiguousRevisionError(expr string, count int) error {
	return err.New(
		pkgName,
		CodeAmbiguousRevision,
		"resolve",
		fmt.Sprintf("short object id '%s' is ambiguous (%d matches)", expr, count),
		nil,
	)
}

// NewInvalidRevisionError indicates an expression that cannot be parsed.
func NewInvalidRevisionError(expr, reason string) error {
	return err.New(
		pkgName,
		CodeInvalidRevision,
		"parse",
		fmt.Sprintf("invalid revision '%s': %s", expr, reason),
		nil,
	)
}

// NewNoHeadError indicates HEAD does not point at any commit yet.
func NewNoHeadError() error {
	return err.New(
		pkgName,
		CodeNoHead,
		"resolve",
		"HEAD does not point to a commit yet",
		nil,
	)
}
