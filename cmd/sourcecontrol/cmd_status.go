package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/kkeuning/gitcore/pkg/status"
)

func newStatusCmd() *cobra.Command {
	var porcelain bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working directory status",
		Long: `Show the status of the working directory and staging area.
Displays which files are modified, staged, untracked, etc.

With --porcelain, prints the stable two-column machine format instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			inspector := status.NewInspector(repo)
			report, err := inspector.Collect(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			if porcelain {
				fmt.Print(report.Porcelain())
				return nil
			}

			printHumanStatus(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&porcelain, "porcelain", false, "Machine-readable output")

	return cmd
}

func printHumanStatus(report *status.Report) {
	fmt.Println(renderHeader(" Repository Status "))
	if report.Detached {
		fmt.Printf("%s %s\n\n", colorCyan(IconBranch), colorBlue("HEAD detached at "+report.Branch))
	} else {
		fmt.Printf("%s %s\n\n", colorCyan(IconBranch), colorBlue("Branch: "+report.Branch))
	}

	if len(report.Entries) == 0 {
		fmt.Println(colorGreen(fmt.Sprintf("  %s  Working tree clean - nothing to commit", IconCheck)))
		return
	}

	var staged, unstaged, untracked []status.PathStatus
	for _, e := range report.Entries {
		if e.Workspace == status.Untracked {
			untracked = append(untracked, e)
			continue
		}
		if e.Index != status.IndexUnchanged {
			staged = append(staged, e)
		}
		if e.Workspace != status.WorkspaceUnchanged {
			unstaged = append(unstaged, e)
		}
	}

	if len(staged) > 0 {
		fmt.Println(renderSection("Changes to be committed:"))
		for _, e := range staged {
			switch e.Index {
			case status.IndexAdded:
				fmt.Println(formatAdded(e.Path.String()))
			case status.IndexDeleted:
				fmt.Println(formatDeleted(e.Path.String()))
			default:
				fmt.Println(formatModified(e.Path.String()))
			}
		}
		fmt.Println()
	}

	if len(unstaged) > 0 {
		fmt.Println(renderSection("Changes not staged for commit:"))
		for _, e := range unstaged {
			if e.Workspace == status.WorkspaceDeleted {
				fmt.Println(formatDeleted(e.Path.String()))
			} else {
				fmt.Println(formatModified(e.Path.String()))
			}
		}
		fmt.Println()
	}

	if len(untracked) > 0 {
		fmt.Println(renderSection("Untracked files:"))
		for _, e := range untracked {
			name := e.Path.String()
			if e.IsDir {
				name += "/"
			}
			fmt.Println(formatUntracked(name))
		}
		fmt.Println()
	}

	fmt.Println(colorYellow("  Use 'srcc add <file>' to stage changes for commit"))
}
