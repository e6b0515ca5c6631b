package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/kkeuning/gitcore/pkg/merge"
	"github.com/kkeuning/gitcore/pkg/revision"
	"github.com/kkeuning/gitcore/pkg/workdir"
)

func newMergeCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "merge <rev> -m <message>",
		Short: "Join another line of development into the current branch",
		Long: `Merge the named commit into the current branch.

The merge finds the best common ancestor of HEAD and the target, applies
the ancestor-to-target changes to the working tree and index, and records
a commit with both parents. Paths with local modifications that the merge
would touch abort it before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("merge requires a commit message (-m)")
			}

			repo, err := findRepository()
			if err != nil {
				return err
			}

			ctx := context.Background()
			resolver := revision.NewResolver(repo)
			theirs, err := resolver.ResolveCommit(args[0])
			if err != nil {
				return err
			}

			merger := merge.NewMerger(repo)
			result, err := merger.Merge(ctx, theirs, message)
			if err != nil {
				var conflict *workdir.ConflictError
				if errors.As(err, &conflict) {
					fmt.Println(colorRed(conflict.Error()))
					return fmt.Errorf("merge aborted")
				}
				return err
			}

			fmt.Printf("%s Merge made commit %s (base %s)\n",
				colorGreen(IconCheck),
				colorYellow(result.CommitSHA.Short().String()),
				result.BaseSHA.Short())
			fmt.Printf("  %d created, %d updated, %d deleted\n",
				result.Applied.Created, result.Applied.Updated, result.Applied.Deleted)

			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Merge commit message")

	return cmd
}
