package cmd

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the configuration: token endpoint and every API URL",
	RunE:  VerifyCmdRunE,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func VerifyCmdRunE(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigFromCLI()
	if err != nil {
		return err
	}

	m, err := CreateManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	checks, err := m.Verify(cmd.Context())
	if err != nil {
		return err
	}

	failed := 0
	for _, c := range checks {
		if c.OK() {
			fmt.Fprintf(cmd.OutOrStdout(), "OK    %s: %s\n", c.Name, c.URL)
			continue
		}
		failed++
		slog.Debug("endpoint check failed", "endpoint", c.Name, "error", c.Err)
		fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %s: %v\n", c.Name, c.URL, c.Err)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d API URLs failed verification", failed, len(checks))
	}
	return nil
}
