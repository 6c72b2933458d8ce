package cmd

import (
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the validated configuration, without the client secret",
	RunE:  ConfigCmdRunE,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func ConfigCmdRunE(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigFromCLI()
	if err != nil {
		return err
	}

	cfg.Print(cmd.OutOrStdout())
	return nil
}
