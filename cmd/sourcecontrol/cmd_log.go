package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/kkeuning/gitcore/pkg/common/err"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/pathfilter"
	"github.com/kkeuning/gitcore/pkg/refs/branch"
	"github.com/kkeuning/gitcore/pkg/repository/refs"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/revision"
	"github.com/kkeuning/gitcore/pkg/revlist"
	"github.com/kkeuning/gitcore/pkg/treediff"
)

func newLogCmd() *cobra.Command {
	var limit int
	var useTable bool
	var oneline bool
	var patch bool
	var abbrev bool
	var format string
	var decorate string

	cmd := &cobra.Command{
		Use:   "log [<rev>...] [^<rev>...] [-- <paths>...]",
		Short: "Show commit logs",
		Long: `Show the commit logs.

Revisions may be branch names, HEAD, abbreviated ids, ranges (A..B), or
exclusions (^rev). Paths after "--" limit output to commits touching them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			revArgs, pathArgs := splitAtDash(cmd, args)

			ctx := context.Background()
			resolver := revision.NewResolver(repo)
			resolved, resolveErr := resolver.ResolveRevisions(revArgs, pathArgs)
			if resolveErr != nil {
				if isNoHead(resolveErr) {
					fmt.Println(colorYellow("No commits yet"))
					return nil
				}
				return resolveErr
			}

			walker := revlist.NewWalker(repo)
			entries, err := walker.Walk(ctx, resolved)
			if err != nil {
				return fmt.Errorf("failed to walk history: %w", err)
			}

			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if len(entries) == 0 {
				fmt.Println(colorYellow("No commits yet"))
				return nil
			}

			if oneline {
				format = "oneline"
			}

			decorations, decorateErr := buildDecorations(repo, decorate)
			if decorateErr != nil {
				decorations = nil
			}

			switch {
			case useTable:
				displayCommitsAsTable(entries)
			case format == "oneline":
				displayCommitsOneline(entries, decorations, abbrev || oneline)
			default:
				displayCommitsDetailed(entries, decorations, abbrev)
			}

			if patch {
				if err := displayPatches(ctx, repo, entries, resolved.Filter); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit the number of commits to show")
	cmd.Flags().BoolVarP(&useTable, "table", "t", false, "Display commits in table format")
	cmd.Flags().BoolVar(&oneline, "oneline", false, "Shorthand for --format=oneline --abbrev-commit")
	cmd.Flags().BoolVarP(&patch, "patch", "p", false, "Show the change each commit introduces")
	cmd.Flags().BoolVar(&abbrev, "abbrev-commit", false, "Show abbreviated commit ids")
	cmd.Flags().StringVar(&format, "format", "medium", "Output format (medium, oneline)")
	cmd.Flags().StringVar(&decorate, "decorate", "short", "Decorate commits with ref names (none, short, full)")

	return cmd
}

// splitAtDash separates revision arguments from pathspec arguments at the
// "--" marker.
func splitAtDash(cmd *cobra.Command, args []string) ([]string, []string) {
	at := cmd.ArgsLenAtDash()
	if at < 0 {
		return args, nil
	}
	return args[:at], args[at:]
}

func isNoHead(e error) bool {
	return err.IsCode(e, revision.CodeNoHead)
}

// decorationSet holds everything needed to annotate a commit line with the
// refs pointing at it.
type decorationSet struct {
	mode      string
	reverse   map[objects.ObjectHash][]string
	headSHA   objects.ObjectHash
	current   string
	detached  bool
}

// buildDecorations loads the reverse-ref map once for the whole log run.
func buildDecorations(repo *sourcerepo.SourceRepository, mode string) (*decorationSet, error) {
	if mode == "none" {
		return nil, nil
	}

	branchRefs := branch.NewBranchRefManager(refs.NewRefManager(repo))
	reverse, err := branchRefs.ReverseRefs()
	if err != nil {
		return nil, err
	}

	set := &decorationSet{mode: mode, reverse: reverse}
	if sha, err := branchRefs.GetHeadSHA(); err == nil {
		set.headSHA = sha
	}
	if current, err := branchRefs.Current(); err == nil && current != "" {
		set.current = current
	} else {
		set.detached = true
	}
	return set, nil
}

// decorationFor renders " (HEAD -> main, feature)" style annotations. A
// detached HEAD lists "HEAD" as a plain name with no arrow.
func (d *decorationSet) decorationFor(sha objects.ObjectHash) string {
	if d == nil {
		return ""
	}

	names := append([]string(nil), d.reverse[sha]...)
	sort.Strings(names)

	if d.mode == "full" {
		for i, n := range names {
			names[i] = branch.BranchRefPrefix + n
		}
	}

	var parts []string
	if sha == d.headSHA {
		switch {
		case d.detached:
			parts = append(parts, "HEAD")
		default:
			headName := d.current
			if d.mode == "full" {
				headName = branch.BranchRefPrefix + d.current
			}
			parts = append(parts, "HEAD -> "+headName)
			names = removeName(names, headName)
		}
	}
	parts = append(parts, names...)

	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// displayCommitsOneline prints one "<id> (<decorations>) <subject>" line
// per commit.
func displayCommitsOneline(entries []revlist.Entry, decorations *decorationSet, abbrev bool) {
	for _, e := range entries {
		id := e.SHA.String()
		if abbrev {
			id = e.SHA.Short().String()
		}

		subject, _, _ := strings.Cut(e.Commit.Message, "\n")
		fmt.Printf("%s%s %s\n",
			colorYellow(id),
			colorCyan(decorations.decorationFor(e.SHA)),
			subject)
	}
}

// displayCommitsDetailed shows commits in the medium format: id, author,
// date, and the indented full message.
func displayCommitsDetailed(entries []revlist.Entry, decorations *decorationSet, abbrev bool) {
	for i, e := range entries {
		c := e.Commit

		id := e.SHA.String()
		if abbrev {
			id = e.SHA.Short().String()
		}

		fmt.Printf("%s %s%s\n",
			colorYellow("commit"),
			colorYellow(id),
			colorCyan(decorations.decorationFor(e.SHA)))

		if len(c.ParentSHAs) > 1 {
			shorts := make([]string, len(c.ParentSHAs))
			for j, p := range c.ParentSHAs {
				shorts[j] = p.Short().String()
			}
			fmt.Printf("Merge: %s\n", strings.Join(shorts, " "))
		}

		fmt.Printf("Author: %s <%s>\n", c.Author.Name, c.Author.Email)
		fmt.Printf("Date:   %s\n", c.Author.When.Format(time.RFC1123Z))
		fmt.Println()
		for _, line := range strings.Split(c.Message, "\n") {
			fmt.Printf("    %s\n", line)
		}

		if i < len(entries)-1 {
			fmt.Println()
		}
	}
}

// displayCommitsAsTable shows commits in a compact table format
func displayCommitsAsTable(entries []revlist.Entry) {
	fmt.Println(renderHeader(" Commit History "))
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Commit", "Author", "Date", "Message")

	for _, e := range entries {
		c := e.Commit

		message := c.Message
		if len(message) > 50 {
			message = message[:47] + "..."
		}

		table.Append(
			colorYellow(e.SHA.Short().String()),
			colorCyan(c.Author.Name),
			colorMagenta(c.Author.When.Format("2006-01-02 15:04")),
			message,
		)
	}

	table.Render()
}

// displayPatches appends each commit's diff against its first parent,
// restricted to the log's path filter.
func displayPatches(ctx context.Context, repo *sourcerepo.SourceRepository, entries []revlist.Entry, filter *pathfilter.Filter) error {
	differ := treediff.NewDiffer(repo)

	for _, e := range entries {
		var parent objects.ObjectHash
		if len(e.Commit.ParentSHAs) > 0 {
			parent = e.Commit.ParentSHAs[0]
		}

		changes, err := differ.DiffCommits(ctx, parent, e.SHA, filter)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			continue
		}

		subject, _, _ := strings.Cut(e.Commit.Message, "\n")
		fmt.Printf("\n%s %s\n", colorYellow(e.SHA.Short().String()), subject)

		files, err := patchFilesFromChanges(repo, changes)
		if err != nil {
			return err
		}
		renderPatchFiles(os.Stdout, files)
	}
	return nil
}
