package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database introspection commands",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print catalog row counts and schema version",
	RunE:  runDBStatus,
}

func init() {
	dbCmd.AddCommand(dbStatusCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	stats, err := lib.Stats()
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	fmt.Printf("schema version: %s\n", stats.SchemaVersion)
	fmt.Printf("files:          %d (%d deleted)\n", stats.FileCount, stats.DeletedCount)
	fmt.Printf("authors:        %d\n", stats.AuthorCount)
	fmt.Printf("tags:           %d\n", stats.TagCount)
	fmt.Printf("links:          %d\n", stats.LinkCount)
	return nil
}
