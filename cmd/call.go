package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RanaTayyab/osu-api-manager/internal/api"
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call <endpoint> [key=value...]",
	Short: "Call a configured endpoint with an access token",
	Long: `The call command issues one authenticated request against a named endpoint.

Arguments after the endpoint name are sent as query parameters.
A rejected token is refreshed and the request retried once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: CallCmdRunE,
}

func init() {
	SetupCallCmdFlags(callCmd)
	rootCmd.AddCommand(callCmd)
}

func SetupCallCmdFlags(command *cobra.Command) {
	command.Flags().StringP("method", "X", http.MethodGet, "HTTP method (GET|POST|HEAD)")
	if err := viper.BindPFlag("call-method", command.Flags().Lookup("method")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.Flags().StringSlice("path", nil, "Path segment appended to the endpoint URL, repeatable")
	if err := viper.BindPFlag("call-path", command.Flags().Lookup("path")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}

func CallCmdRunE(cmd *cobra.Command, args []string) error {
	req, err := parseCallArgs(args, viper.GetString("call-method"), viper.GetStringSlice("call-path"))
	if err != nil {
		return err
	}
	slog.Debug("args", "request", req)

	cfg, err := LoadConfigFromCLI()
	if err != nil {
		return err
	}

	m, err := CreateManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	res, err := m.Do(cmd.Context(), req)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), res)
}

func parseCallArgs(args []string, method string, path []string) (api.Request, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodHead:
	default:
		return api.Request{}, fmt.Errorf("unsupported method: %s", method)
	}

	req := api.Request{Endpoint: args[0], Method: method, Path: path}
	if len(args) > 1 {
		req.Params = make(map[string]string, len(args)-1)
	}
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return api.Request{}, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		req.Params[key] = value
	}
	return req, nil
}
