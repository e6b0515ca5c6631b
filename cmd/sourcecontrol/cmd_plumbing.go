package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/kkeuning/gitcore/pkg/objects"
	"github.com/kkeuning/gitcore/pkg/objects/blob"
	"github.com/kkeuning/gitcore/pkg/objects/commit"
	"github.com/kkeuning/gitcore/pkg/objects/tree"
	"github.com/kkeuning/gitcore/pkg/repository/scpath"
	"github.com/kkeuning/gitcore/pkg/repository/sourcerepo"
	"github.com/kkeuning/gitcore/pkg/revision"
)

func newHashObjectCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] <file>",
		Short: "Compute an object id, optionally storing the blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			b := blob.NewBlob(data)

			if write {
				repo, err := findRepository()
				if err != nil {
					return err
				}
				hash, err := repo.WriteObject(b)
				if err != nil {
					return fmt.Errorf("store blob: %w", err)
				}
				fmt.Println(hash)
				return nil
			}

			hash, err := b.Hash()
			if err != nil {
				return fmt.Errorf("hash blob: %w", err)
			}
			fmt.Println(hash)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Store the blob in the object database")

	return cmd
}

func newCatFileCmd() *cobra.Command {
	var pretty bool
	var showType bool
	var showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s) <object>",
		Short: "Show the content, type, or size of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			resolver := revision.NewResolver(repo)
			sha, err := resolver.ResolveObject(args[0])
			if err != nil {
				return err
			}

			obj, err := repo.ReadObject(sha)
			if err != nil {
				return err
			}
			if obj == nil {
				return fmt.Errorf("object %s not found", args[0])
			}

			switch {
			case showType:
				fmt.Println(obj.Type())
			case showSize:
				size, err := obj.Size()
				if err != nil {
					return err
				}
				fmt.Println(size.Int64())
			case pretty:
				return prettyPrintObject(repo, obj)
			default:
				return fmt.Errorf("one of -p, -t, or -s is required")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "Show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "Show the content size in bytes")

	return cmd
}

func prettyPrintObject(repo *sourcerepo.SourceRepository, obj objects.BaseObject) error {
	switch o := obj.(type) {
	case *blob.Blob:
		content, err := o.Content()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(content.Bytes())
		return err

	case *tree.Tree:
		for _, entry := range o.Entries() {
			fmt.Printf("%s %s %s\t%s\n",
				entry.Mode().ToOctalString(),
				treeEntryType(entry),
				entry.SHA(),
				entry.Name())
		}
		return nil

	case *commit.Commit:
		content, err := o.Content()
		if err != nil {
			return err
		}
		fmt.Println(content.String())
		return nil

	default:
		return fmt.Errorf("unsupported object type %s", obj.Type())
	}
}

func treeEntryType(entry *tree.TreeEntry) string {
	if entry.IsDirectory() {
		return "tree"
	}
	return "blob"
}

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <rev-or-tree>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			resolver := revision.NewResolver(repo)
			sha, err := resolver.ResolveObject(args[0])
			if err != nil {
				return err
			}

			treeSHA, err := treeIDFor(repo, sha)
			if err != nil {
				return err
			}

			return printTree(context.Background(), repo, treeSHA, "", recursive)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subtrees")

	return cmd
}

// treeIDFor accepts either a commit id (peeled to its root tree) or a tree
// id directly.
func treeIDFor(repo *sourcerepo.SourceRepository, sha objects.ObjectHash) (objects.ObjectHash, error) {
	obj, err := repo.ReadObject(sha)
	if err != nil {
		return "", err
	}
	if obj == nil {
		return "", fmt.Errorf("object %s not found", sha.Short())
	}

	switch o := obj.(type) {
	case *commit.Commit:
		return o.TreeSHA, nil
	case *tree.Tree:
		return sha, nil
	default:
		return "", fmt.Errorf("object %s is a %s, not a tree or commit", sha.Short(), obj.Type())
	}
}

func printTree(ctx context.Context, repo *sourcerepo.SourceRepository, treeSHA objects.ObjectHash, prefix scpath.RelativePath, recursive bool) error {
	t, err := repo.ReadTreeObject(treeSHA)
	if err != nil {
		return err
	}

	for _, entry := range t.Entries() {
		var path scpath.RelativePath
		if prefix == "" {
			path = entry.Path()
		} else {
			path = prefix.Join(entry.Name())
		}

		if entry.IsDirectory() && recursive {
			if err := printTree(ctx, repo, entry.SHA(), path, recursive); err != nil {
				return err
			}
			continue
		}

		fmt.Printf("%s %s %s\t%s\n",
			entry.Mode().ToOctalString(),
			treeEntryType(entry),
			entry.SHA(),
			path)
	}
	return nil
}
