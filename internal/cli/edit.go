package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagbox/tagbox"
)

var (
	editTitle     string
	editYear      string
	editPublisher string
	editSource    string
	editCategory1 string
	editCategory2 string
	editCategory3 string
	editSummary   string
	editAuthors   string
	editTags      string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Apply a sparse patch to a file entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editYear, "year", "", "new year, or \"none\" to clear")
	editCmd.Flags().StringVar(&editPublisher, "publisher", "", "new publisher")
	editCmd.Flags().StringVar(&editSource, "source", "", "new source")
	editCmd.Flags().StringVar(&editCategory1, "category1", "", "new category1")
	editCmd.Flags().StringVar(&editCategory2, "category2", "", "new category2")
	editCmd.Flags().StringVar(&editCategory3, "category3", "", "new category3")
	editCmd.Flags().StringVar(&editSummary, "summary", "", "new summary")
	editCmd.Flags().StringVar(&editAuthors, "authors", "", "comma-separated replacement author list")
	editCmd.Flags().StringVar(&editTags, "tags", "", "comma-separated replacement tag list")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	patch, err := buildPatch(cmd)
	if err != nil {
		return err
	}

	entry, err := lib.EditFile(args[0], patch)
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}
	fmt.Printf("updated %s -> %s\n", entry.ID, entry.RelativePath)
	return nil
}

func buildPatch(cmd *cobra.Command) (tagbox.FilePatch, error) {
	var patch tagbox.FilePatch

	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &editTitle
	}
	if flags.Changed("publisher") {
		patch.Publisher = &editPublisher
	}
	if flags.Changed("source") {
		patch.Source = &editSource
	}
	if flags.Changed("category1") {
		patch.Category1 = &editCategory1
	}
	if flags.Changed("category2") {
		patch.Category2 = &editCategory2
	}
	if flags.Changed("category3") {
		patch.Category3 = &editCategory3
	}
	if flags.Changed("summary") {
		patch.Summary = &editSummary
	}
	if flags.Changed("authors") {
		authors := splitCSV(editAuthors)
		patch.Authors = &authors
	}
	if flags.Changed("tags") {
		tags := splitCSV(editTags)
		patch.Tags = &tags
	}
	if flags.Changed("year") {
		yearPtr, err := parseYearFlag(editYear)
		if err != nil {
			return patch, err
		}
		patch.Year = &yearPtr
	}
	return patch, nil
}

func parseYearFlag(raw string) (*int, error) {
	if strings.EqualFold(raw, "none") || raw == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --year %q: %w", raw, err)
	}
	return &y, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
