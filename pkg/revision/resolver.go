// Package revision resolves user-supplied revision expressions to object
// ids.
//
// Supported grammar:
//
//	rev    := atom suffix*
//	atom   := "HEAD" | "@" | branch-name | abbreviated-hex
//	suffix := "^" | "~" N
//	range  := rev ".." rev
//	excl   := "^" rev
//
// "@" aliases HEAD, "^" selects the first parent, "~N" follows the
// first-parent chain N times. Abbreviated ids are expanded by scanning the
// object database and must be unique.
package revision

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/kkeuning/gitcore/pkg/common/logger"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/commit"
	"github.com/kkeuning/gitcore/pkg/pathfilter"
	"github.com/kkeuning/gitcore/pkg/refs/branch"
	"github.com/kkeuning/gitcore/pkg/repository/refs"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
)

// Resolved is the outcome of resolving a full revision argument list: the
// commit tips to include, the tips whose ancestries are excluded, and an
// optional path filter.
type Resolved struct {
	Included []objects.ObjectHash
	Excluded []objects.ObjectHash
	Filter   *pathfilter.Filter
}

// Resolver turns revision expressions into commit ids using the refs layer
// and the object database.
type Resolver struct {
	repo       *sourcerepo.SourceRepository
	branchRefs *branch.BranchRefManager
	logger     *slog.Logger
}

// NewResolver creates a resolver bound to a repository.
func NewResolver(repo *sourcerepo.SourceRepository) *Resolver {
	refMgr := refs.NewRefManager(repo)
	return &Resolver{
		repo:       repo,
		branchRefs: branch.NewBranchRefManager(refMgr),
		logger:     logger.With("component", "revision"),
	}
}

// ResolveCommit resolves a single revision expression to a commit id.
func (r *Resolver) ResolveCommit(expr string) (objects.ObjectHash, error) {
	if expr == "" {
		return "", NewInvalidRevisionError(expr, "empty expression")
	}

	atom, suffixes, err := splitSuffixes(expr)
	if err != nil {
		return "", err
	}

	sha, err := r.resolveAtom(atom)
	if err != nil {
		return "", err
	}

	for _, s := range suffixes {
		sha, err = r.nthAncestor(expr, sha, s)
		if err != nil {
			return "", err
		}
	}

	return sha, nil
}

// ResolveRevisions resolves a command's full revision argument list.
// Arguments may be plain revisions, "A..B" ranges, or "^rev" exclusions.
// With no revision arguments HEAD is included. Paths become the filter.
func (r *Resolver) ResolveRevisions(args []string, paths []string) (*Resolved, error) {
	resolved := &Resolved{}

	for _, arg := range args {
		switch {
		case strings.Contains(arg, ".."):
			lower, upper, ok := strings.Cut(arg, "..")
			if !ok || strings.Contains(upper, "..") {
				return nil, NewInvalidRevisionError(arg, "malformed range")
			}
			if lower == "" {
				lower = "HEAD"
			}
			if upper == "" {
				upper = "HEAD"
			}
			excluded, err := r.ResolveCommit(lower)
			if err != nil {
				return nil, err
			}
			included, err := r.ResolveCommit(upper)
			if err != nil {
				return nil, err
			}
			resolved.Excluded = append(resolved.Excluded, excluded)
			resolved.Included = append(resolved.Included, included)

		case strings.HasPrefix(arg, "^"):
			excluded, err := r.ResolveCommit(arg[1:])
			if err != nil {
				return nil, err
			}
			resolved.Excluded = append(resolved.Excluded, excluded)

		default:
			included, err := r.ResolveCommit(arg)
			if err != nil {
				return nil, err
			}
			resolved.Included = append(resolved.Included, included)
		}
	}

	if len(resolved.Included) == 0 {
		head, err := r.resolveHead()
		if err != nil {
			return nil, err
		}
		resolved.Included = append(resolved.Included, head)
	}

	if len(paths) > 0 {
		resolved.Filter = pathfilter.FromStrings(paths)
	}

	return resolved, nil
}

// ResolveObject resolves an expression that may name any object kind, not
// just a commit: suffix-free abbreviated blob and tree ids are accepted.
func (r *Resolver) ResolveObject(expr string) (objects.ObjectHash, error) {
	atom, suffixes, err := splitSuffixes(expr)
	if err != nil {
		return "", err
	}
	if len(suffixes) > 0 {
		return r.ResolveCommit(expr)
	}
	return r.resolveAtom(atom)
}

// splitSuffixes separates the atom from its trailing "^" / "~N" operators.
// Each suffix is normalized to an ancestor count: "^" is 1, "~N" is N.
func splitSuffixes(expr string) (string, []int, error) {
	cut := strings.IndexAny(expr, "^~")
	if cut == 0 {
		return "", nil, NewInvalidRevisionError(expr, "expression starts with a suffix operator")
	}
	if cut == -1 {
		return expr, nil, nil
	}

	atom := expr[:cut]
	rest := expr[cut:]

	var suffixes []int
	for len(rest) > 0 {
		switch rest[0] {
		case '^':
			suffixes = append(suffixes, 1)
			rest = rest[1:]
		case '~':
			rest = rest[1:]
			i := 0
			for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
				i++
			}
			if i == 0 {
				// Bare "~" is an alias for "~1".
				suffixes = append(suffixes, 1)
				continue
			}
			n, err := strconv.Atoi(rest[:i])
			if err != nil {
				return "", nil, NewInvalidRevisionError(expr, "bad ancestor count")
			}
			suffixes = append(suffixes, n)
			rest = rest[i:]
		default:
			return "", nil, NewInvalidRevisionError(expr, "unexpected character after suffix")
		}
	}

	return atom, suffixes, nil
}

// resolveAtom resolves the suffix-free part of an expression.
func (r *Resolver) resolveAtom(atom string) (objects.ObjectHash, error) {
	if atom == "HEAD" || atom == "@" {
		return r.resolveHead()
	}

	// Branch names shadow abbreviated object ids, matching git's lookup
	// order for refs.
	if branch.ValidateBranchName(atom) == nil {
		exists, err := r.branchRefs.Exists(atom)
		if err == nil && exists {
			return r.branchRefs.Resolve(atom)
		}
	}

	if isHex(atom) && len(atom) == objects.HashLength {
		hash, err := objects.NewObjectHashFromString(atom)
		if err != nil {
			return "", NewInvalidRevisionError(atom, "malformed object id")
		}
		has, err := r.repo.ObjectStore().HasObject(hash)
		if err != nil || !has {
			return "", NewUnknownRevisionError(atom)
		}
		return hash, nil
	}

	if isHex(atom) && len(atom) >= 4 {
		return r.expandAbbreviated(atom)
	}

	return "", NewUnknownRevisionError(atom)
}

// expandAbbreviated scans the object database for a unique id with the
// given prefix.
func (r *Resolver) expandAbbreviated(prefix string) (objects.ObjectHash, error) {
	matches, err := r.repo.ObjectStore().FindByPrefix(prefix)
	if err != nil {
		return "", NewUnknownRevisionError(prefix)
	}

	switch len(matches) {
	case 0:
		return "", NewUnknownRevisionError(prefix)
	case 1:
		return matches[0], nil
	default:
		return "", NewAmbiguousRevisionError(prefix, len(matches))
	}
}

// nthAncestor follows the first-parent chain n times.
func (r *Resolver) nthAncestor(expr string, sha objects.ObjectHash, n int) (objects.ObjectHash, error) {
	for ; n > 0; n-- {
		c, err := r.repo.ReadCommitObject(sha)
		if err != nil {
			return "", NewUnknownRevisionError(expr)
		}
		if len(c.ParentSHAs) == 0 {
			return "", NewUnknownRevisionError(expr)
		}
		sha = c.ParentSHAs[0]
	}
	return sha, nil
}

func (r *Resolver) resolveHead() (objects.ObjectHash, error) {
	sha, err := r.branchRefs.GetHeadSHA()
	if err != nil {
		return "", NewNoHeadError()
	}
	return sha, nil
}

func isHex(s string) bool {
	return commit.LooksLikeCommitSHA(s) || (len(s) > 0 && len(s) <= objects.HashLength && allHex(s))
}

func allHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
