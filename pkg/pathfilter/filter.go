// Package pathfilter provides a prefix trie over repository paths.
//
// A filter is built from a set of user-supplied pathspecs and answers the
// question "is this path covered by the filter?". A path is covered when it
// is a prefix of one of the filter paths, or one of the filter paths is a
// prefix of it. The empty filter covers every path.
//
// Walkers use filters to prune whole subtrees: if a directory name is not
// covered at the current trie level there is no need to recurse into it.
package pathfilter

import (
	"sort"
	"strings"

	"github.com/kkeuning/gitcore/pkg/repository/scpath"
)

// Filter is one level of the pathspec trie. A node with no children matches
// everything at and below its position.
type Filter struct {
	children map[string]*Filter
	terminal bool
}

// everything is the shared "match all" node handed out when descending past
// a filter leaf. It has no children, so it matches all.
var everything = &Filter{}

// New builds a filter from a set of repository-relative paths. An empty set
// produces a filter that matches every path.
func New(paths ...scpath.RelativePath) *Filter {
	f := &Filter{}
	for _, p := range paths {
		f.insert(p.Normalize().Components())
	}
	return f
}

// FromStrings builds a filter from plain string pathspecs, normalizing each.
func FromStrings(paths []string) *Filter {
	f := &Filter{}
	for _, p := range paths {
		trimmed := strings.Trim(p, "/")
		if trimmed == "" {
			continue
		}
		f.insert(strings.Split(trimmed, "/"))
	}
	return f
}

func (f *Filter) insert(components []string) {
	node := f
	for _, c := range components {
		if node.terminal {
			return
		}
		if node.children == nil {
			node.children = make(map[string]*Filter)
		}
		child, ok := node.children[c]
		if !ok {
			child = &Filter{}
			node.children[c] = child
		}
		node = child
	}
	// A complete pathspec matches everything beneath it; drop any deeper,
	// now-redundant specs.
	node.terminal = true
	node.children = nil
}

// MatchesAll reports whether this node covers every path beneath it.
func (f *Filter) MatchesAll() bool {
	return f == nil || len(f.children) == 0
}

// Descend returns the sub-filter for a single path component, and whether
// the component is covered at all. Once past a filter leaf everything
// matches, so the shared match-all node is returned.
func (f *Filter) Descend(name string) (*Filter, bool) {
	if f.MatchesAll() {
		return everything, true
	}
	child, ok := f.children[name]
	if !ok {
		return nil, false
	}
	return child, true
}

// Matches reports whether a full path is covered by the filter: the path is
// a prefix of a filter path, or a filter path is a prefix of the path.
func (f *Filter) Matches(path scpath.RelativePath) bool {
	node := f
	for _, c := range path.Normalize().Components() {
		if node.MatchesAll() {
			return true
		}
		child, ok := node.children[c]
		if !ok {
			return false
		}
		node = child
	}
	return true
}

// Paths returns the filter's pathspecs in sorted order, mainly for
// diagnostics and tests.
func (f *Filter) Paths() []string {
	var out []string
	f.collect("", &out)
	sort.Strings(out)
	return out
}

func (f *Filter) collect(prefix string, out *[]string) {
	if f.MatchesAll() {
		if prefix != "" {
			*out = append(*out, prefix)
		}
		return
	}
	for name, child := range f.children {
		joined := name
		if prefix != "" {
			joined = prefix + "/" + name
		}
		child.collect(joined, out)
	}
}
