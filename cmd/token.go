package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Acquire an access token from the configured token endpoint",
	RunE:  TokenCmdRunE,
}

func init() {
	SetupTokenCmdFlags(tokenCmd)
	rootCmd.AddCommand(tokenCmd)
}

func SetupTokenCmdFlags(command *cobra.Command) {
	command.Flags().Bool("show", false, "Print the full token instead of a masked one")
	if err := viper.BindPFlag("token-show", command.Flags().Lookup("show")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}

func TokenCmdRunE(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigFromCLI()
	if err != nil {
		return err
	}

	m, err := CreateManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	t, err := m.Token(cmd.Context())
	if err != nil {
		return err
	}

	value := t.Value
	if !viper.GetBool("token-show") {
		value = mask(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bearer %s\n", value)
	if t.ExpiresAt.IsZero() {
		fmt.Fprintln(cmd.OutOrStdout(), "Expires: when rejected")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Expires: %s\n", t.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}

// mask keeps the first four characters of a token
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
