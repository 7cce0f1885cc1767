package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteHard bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a file entry (use --hard to purge it outright)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteHard, "hard", false, "hard-delete: remove the row, FTS document, and links outright")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	id := args[0]
	if deleteHard {
		if err := lib.PurgeFile(id); err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		fmt.Printf("purged %s\n", id)
		return nil
	}

	if err := lib.DeleteFile(id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("deleted %s\n", id)
	return nil
}
