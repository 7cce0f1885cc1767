package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagbox/tagbox/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a starter tagbox.toml with default values",
	RunE:  runInitConfig,
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if err := config.Write(cfgFile, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("wrote %s\n", cfgFile)
	return nil
}
