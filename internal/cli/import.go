package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tagbox/tagbox"
)

var importMove bool

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import one or more files into the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importMove, "move", false, "move source files instead of copying them")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	opts := tagbox.ImportOptions{Move: importMove}

	if len(args) == 1 {
		entry, err := lib.ImportFile(ctx, args[0], nil, opts)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Printf("imported %s -> %s (id %s)\n", args[0], entry.RelativePath, entry.ID)
		return nil
	}

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
	)

	results := lib.ImportFiles(ctx, args, opts)
	var failed int
	for _, r := range results {
		bar.Add(1)
		if r.Err != nil {
			failed++
			fmt.Printf("\n%s: %v\n", r.Path, r.Err)
			continue
		}
	}
	fmt.Printf("\nimported %d/%d files (%d failed)\n", len(args)-failed, len(args), failed)
	return nil
}
