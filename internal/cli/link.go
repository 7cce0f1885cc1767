package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagbox/tagbox"
)

var linkRelation string

var linkCmd = &cobra.Command{
	Use:   "link <file-a> <file-b>",
	Short: "Link two files together",
	Args:  cobra.ExactArgs(2),
	RunE:  runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <file-a> <file-b>",
	Short: "Remove the link between two files",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnlink,
}

func init() {
	linkCmd.Flags().StringVar(&linkRelation, "relation", "", "relation kind (references|derived_from|relates|depends|<custom>)")
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	relation := tagbox.ParseRelationType(linkRelation)
	if err := lib.LinkFiles(args[0], args[1], relation); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}
	fmt.Printf("linked %s <-> %s\n", args[0], args[1])
	return nil
}

func runUnlink(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.UnlinkFiles(args[0], args[1]); err != nil {
		return fmt.Errorf("unlink failed: %w", err)
	}
	fmt.Printf("unlinked %s <-> %s\n", args[0], args[1])
	return nil
}
