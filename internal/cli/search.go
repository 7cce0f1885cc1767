package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagbox/tagbox"
)

var (
	searchLimit  int
	searchOffset int
	searchFuzzy  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the library with the tagbox query DSL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "page size (defaults to search.default_limit)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "page offset")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "use relaxed fuzzy matching instead of the DSL grammar")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	opts := tagbox.SearchOptions{Limit: searchLimit, Offset: searchOffset}

	var result *tagbox.SearchResult
	if searchFuzzy {
		result, err = lib.FuzzySearch(ctx, args[0], opts)
	} else {
		result, err = lib.SearchAdvanced(ctx, args[0], opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, e := range result.Entries {
		fmt.Printf("%s  %-60s  %s\n", e.ID, e.Title, e.RelativePath)
	}
	fmt.Printf("\n%d of %d results (offset %d)\n", len(result.Entries), result.TotalCount, result.Offset)
	return nil
}
