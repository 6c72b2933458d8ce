package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RanaTayyab/osu-api-manager/internal/utils"
)

// Design notes:
// - Running the binary without a subcommand starts the interactive menu
// - The `call` command issues a single authenticated request against a named endpoint
// - The `token` command only acquires an access token
// - The `verify` command checks the token endpoint and probes every configured endpoint
//
// The configuration is loaded and validated once per command; a missing key aborts before any request.
// Every failed request is appended to the log file configured by `log_file`.

var rootCmd = &cobra.Command{
	Use:               "osu-api-manager",
	Short:             "Query the OSU public APIs with an OAuth2 client credentials token",
	PersistentPreRunE: RootCmdPersistentPreRunE,
	RunE:              MenuCmdRunE,
	SilenceUsage:      true,
}

// RootCmdPersistentPreRunE configures logging before any command runs
func RootCmdPersistentPreRunE(cmd *cobra.Command, args []string) error {
	logLevelArg := viper.GetString("logLevel")
	if err := setLogLevel(cmd, logLevelArg); err != nil {
		return err
	}

	slog.Debug("Application initialized", "logLevel", logLevelArg, "config", viper.GetString("config"))

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(utils.SortedKeys(validLogLevels), "|")
)

func init() {
	SetupRootCmdFlags(rootCmd)

	viper.SetEnvPrefix("OSU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func SetupRootCmdFlags(command *cobra.Command) {
	command.PersistentFlags().StringP("logLevel", "l", "warn", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	if err := viper.BindPFlag("logLevel", command.PersistentFlags().Lookup("logLevel")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file (default ./configuration.yaml)")
	if err := viper.BindPFlag("config", command.PersistentFlags().Lookup("config")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.PersistentFlags().Duration("timeout", 0, "Timeout of each HTTP call (overrides the configuration)")
	if err := viper.BindPFlag("timeout", command.PersistentFlags().Lookup("timeout")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}

// setLogLevel sets the log level of the diagnostic logger.
// Diagnostics go to stderr so they do not interleave with the menu.
func setLogLevel(cmd *cobra.Command, logLevel string) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
