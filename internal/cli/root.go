// Package cli is the cobra command tree fronting the tagbox library. It
// stays thin: every command parses flags, opens a Library via
// tagbox.InitDatabase, and delegates to a public API call.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagbox/tagbox"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tagbox",
	Short: "TagBox - a personal document library",
	Long: `TagBox ingests files, extracts bibliographic metadata, stores each
at a deterministic path, and makes the library searchable through a typed
query language backed by full-text indexing.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from cmd/tagbox/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "tagbox.toml", "path to tagbox's TOML config file")
}

// openLibrary loads config from cfgFile and opens a Library, the pattern
// every subcommand's RunE starts with.
func openLibrary() (*tagbox.Library, error) {
	cfg, err := tagbox.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lib, err := tagbox.InitDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return lib, nil
}
