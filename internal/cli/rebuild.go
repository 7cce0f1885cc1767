package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var rebuildDryRun bool

var rebuildIndexCmd = &cobra.Command{
	Use:   "rebuild-index",
	Short: "Rebuild the full-text search index from the catalog",
	RunE:  runRebuildIndex,
}

var rebuildPathsCmd = &cobra.Command{
	Use:   "rebuild-paths",
	Short: "Relocate files whose on-disk path has drifted from their metadata",
	RunE:  runRebuildPaths,
}

func init() {
	rebuildPathsCmd.Flags().BoolVar(&rebuildDryRun, "dry-run", false, "report moves without applying them")
	rootCmd.AddCommand(rebuildIndexCmd)
	rootCmd.AddCommand(rebuildPathsCmd)
}

func runRebuildIndex(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.RebuildSearchIndex(context.Background()); err != nil {
		return fmt.Errorf("rebuild-index failed: %w", err)
	}
	fmt.Println("search index rebuilt")
	return nil
}

func runRebuildPaths(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	var bar *progressbar.ProgressBar
	results, err := lib.RebuildAllFiles(context.Background(), rebuildDryRun, func(current, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total, progressbar.OptionSetDescription("scanning"))
		}
		bar.Set(current)
	})
	if err != nil {
		return fmt.Errorf("rebuild-paths failed: %w", err)
	}

	verb := "moved"
	if rebuildDryRun {
		verb = "would move"
	}
	for _, r := range results {
		fmt.Printf("%s %s: %s -> %s\n", verb, r.ID, r.OldPath, r.NewPath)
	}
	fmt.Printf("\n%d file(s) %s\n", len(results), verb)
	return nil
}
