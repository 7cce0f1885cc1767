package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Author management commands",
}

var authorAliases string

var authorCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new author",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthorCreate,
}

var authorMergeCmd = &cobra.Command{
	Use:   "merge <from-id> <to-id>",
	Short: "Merge one author into another, rewriting every file edge",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthorMerge,
}

func init() {
	authorCreateCmd.Flags().StringVar(&authorAliases, "aliases", "", "comma-separated alias list")
	authorCmd.AddCommand(authorCreateCmd)
	authorCmd.AddCommand(authorMergeCmd)
	rootCmd.AddCommand(authorCmd)
}

func runAuthorCreate(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	var aliases []string
	if authorAliases != "" {
		for _, a := range strings.Split(authorAliases, ",") {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}
	}

	author, err := lib.CreateAuthor(args[0], aliases)
	if err != nil {
		return fmt.Errorf("author create failed: %w", err)
	}
	fmt.Printf("created author %s (%s)\n", author.ID, author.Name)
	return nil
}

func runAuthorMerge(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.MergeAuthors(args[0], args[1]); err != nil {
		return fmt.Errorf("author merge failed: %w", err)
	}
	fmt.Printf("merged %s into %s\n", args[0], args[1])
	return nil
}
