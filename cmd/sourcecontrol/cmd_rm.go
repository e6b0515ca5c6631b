package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/kkeuning/gitcore/cmd/ui"
	"github.com/kkeuning/gitcore/pkg/index"
)

func newRmCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "rm [--cached] <paths>...",
		Short: "Remove files from the index and the working tree",
		Long: `Unstage the named paths and delete them from the working tree.
A directory argument unstages everything underneath it.

With --cached, paths are only removed from the index and the workspace
files are left in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			indexMgr := index.NewManager(repo.WorkingDirectory())
			if err := indexMgr.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize index: %w", err)
			}

			result, err := indexMgr.Remove(args, !cached)
			if err != nil {
				return fmt.Errorf("failed to remove files: %w", err)
			}

			for _, path := range result.Removed {
				fmt.Printf("%s %s\n", ui.Green("removed:"), path)
			}
			for _, failure := range result.Failed {
				fmt.Printf("%s %s: %s\n", ui.Red("failed:"), failure.Path, failure.Reason)
			}

			if len(result.Failed) > 0 {
				return fmt.Errorf("could not remove %d path(s)", len(result.Failed))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Only remove paths from the index")

	return cmd
}
