package cmd_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/RanaTayyab/osu-api-manager/cmd"
	"github.com/RanaTayyab/osu-api-manager/internal/api"
	"github.com/RanaTayyab/osu-api-manager/internal/config"
	itestutils "github.com/RanaTayyab/osu-api-manager/internal/testutils"
	"github.com/RanaTayyab/osu-api-manager/testutils"
)

type env struct {
	command    *cobra.Command
	transport  *httpmock.MockTransport
	configPath string
	logPath    string
}

// newEnv assembles the command tree around a mocked HTTP client.
func newEnv(t *testing.T) *env {
	dir := testutils.SetupTmpDir(t)
	configPath, logPath := testutils.WriteConfig(t, dir)

	client, transport := itestutils.NewMockClient()
	transport.RegisterResponder(http.MethodPost, itestutils.TokenURL, testutils.AuthResponder)

	root := &cobra.Command{
		Use:               "osu-api-manager",
		PersistentPreRunE: cmd.RootCmdPersistentPreRunE,
		RunE:              cmd.MenuCmdRunE,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	cmd.SetupRootCmdFlags(root)

	call := &cobra.Command{Use: "call", Args: cobra.MinimumNArgs(1), RunE: cmd.CallCmdRunE}
	cmd.SetupCallCmdFlags(call)

	tok := &cobra.Command{Use: "token", RunE: cmd.TokenCmdRunE}
	cmd.SetupTokenCmdFlags(tok)

	verify := &cobra.Command{Use: "verify", RunE: cmd.VerifyCmdRunE}
	show := &cobra.Command{Use: "config", RunE: cmd.ConfigCmdRunE}

	root.AddCommand(call, tok, verify, show)
	root.SetContext(context.WithValue(context.Background(), cmd.HttpClientKey, client))

	return &env{command: root, transport: transport, configPath: configPath, logPath: logPath}
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	args = append(args, "--config", e.configPath)
	return testutils.Execute(t, e.command, strings.NewReader(stdin), args...)
}

func TestCallCmd_Terms(t *testing.T) {
	e := newEnv(t)
	e.transport.RegisterResponder(http.MethodGet, itestutils.TermsURL, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "2023-10-01", req.URL.Query().Get("date"))
		return testutils.TermsResponder(req)
	})

	out, err := e.run(t, "", "call", "terms", "date=2023-10-01")
	require.NoError(t, err)
	require.Contains(t, out, `"season": "Fall"`)
	require.Empty(t, testutils.ReadLog(t, e.logPath))
}

func TestCallCmd_Path(t *testing.T) {
	e := newEnv(t)
	e.transport.RegisterResponder(http.MethodGet, itestutils.VehiclesURL+"/"+testutils.VehicleID, testutils.VehicleResponder)

	out, err := e.run(t, "", "call", "vehicles", "--path", testutils.VehicleID)
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Bus 55"`)
}

func TestCallCmd_Text(t *testing.T) {
	e := newEnv(t)
	e.transport.RegisterResponder(http.MethodGet, itestutils.BeaverBusURL, testutils.BeaverBusResponder)

	out, err := e.run(t, "", "call", "beaver_bus")
	require.NoError(t, err)
	require.Equal(t, "all buses on time\n", out)
}

func TestCallCmd_Errors(t *testing.T) {
	tt := []struct {
		name     string
		args     []string
		setup    func(e *env)
		check    func(t *testing.T, err error)
		logLines int
		calls    int
	}{
		{
			name: "unknown endpoint",
			args: []string{"call", "unknown_service"},
			check: func(t *testing.T, err error) {
				var unknown *api.UnknownEndpointError
				require.True(t, errors.As(err, &unknown))
			},
			logLines: 1,
			calls:    0,
		},
		{
			name: "bad parameter",
			args: []string{"call", "terms", "date"},
			check: func(t *testing.T, err error) {
				require.EqualError(t, err, `invalid parameter "date", expected key=value`)
			},
			calls: 0,
		},
		{
			name: "bad method",
			args: []string{"call", "terms", "-X", "DELETE"},
			check: func(t *testing.T, err error) {
				require.EqualError(t, err, "unsupported method: DELETE")
			},
			calls: 0,
		},
		{
			name: "persistent unauthorized",
			args: []string{"call", "terms"},
			setup: func(e *env) {
				e.transport.RegisterResponder(http.MethodGet, itestutils.TermsURL, testutils.UnauthorizedResponder)
			},
			check: func(t *testing.T, err error) {
				var authErr *api.AuthError
				require.True(t, errors.As(err, &authErr))
			},
			// One INFO line for the refresh, one ERROR line for the failure
			logLines: 2,
			calls:    4,
		},
		{
			name: "not found",
			args: []string{"call", "routes", "--path", "99"},
			setup: func(e *env) {
				e.transport.RegisterResponder(http.MethodGet, itestutils.RoutesURL+"/99", testutils.NotFoundResponder)
			},
			check: func(t *testing.T, err error) {
				var apiErr *api.ApiError
				require.True(t, errors.As(err, &apiErr))
				require.Equal(t, http.StatusNotFound, apiErr.Status)
			},
			logLines: 1,
			calls:    2,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			if tc.setup != nil {
				tc.setup(e)
			}

			_, err := e.run(t, "", tc.args...)
			tc.check(t, err)

			log := strings.TrimSpace(testutils.ReadLog(t, e.logPath))
			if tc.logLines == 0 {
				require.Empty(t, log)
			} else {
				require.Len(t, strings.Split(log, "\n"), tc.logLines)
				require.Equal(t, 1, strings.Count(log, "] ERROR: "))
			}
			require.Equal(t, tc.calls, e.transport.GetTotalCallCount())
		})
	}
}

func TestCallCmd_MissingConfigKey(t *testing.T) {
	e := newEnv(t)
	data, err := os.ReadFile(e.configPath)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	var kept []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "  terms:") {
			kept = append(kept, line)
		}
	}
	require.NoError(t, os.WriteFile(e.configPath, []byte(strings.Join(kept, "\n")), 0644))

	_, err = e.run(t, "", "call", "terms")
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "api_urls.terms", cfgErr.Key)
	require.Zero(t, e.transport.GetTotalCallCount())
}

func TestCallCmd_MissingConfigFile(t *testing.T) {
	e := newEnv(t)
	e.configPath = e.configPath + ".missing"

	_, err := e.run(t, "", "call", "terms")
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "config", cfgErr.Key)
}

func TestTokenCmd(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "token")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Bearer ya29****\nExpires: "), out)

	out, err = e.run(t, "", "token", "--show")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Bearer "+itestutils.AccessToken+"\n"), out)
}

func TestTokenCmd_Failure(t *testing.T) {
	e := newEnv(t)
	e.transport.RegisterResponder(http.MethodPost, itestutils.TokenURL, httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := e.run(t, "", "token")
	var authErr *api.AuthError
	require.True(t, errors.As(err, &authErr))

	log := strings.TrimSpace(testutils.ReadLog(t, e.logPath))
	require.Len(t, strings.Split(log, "\n"), 1)
	require.Contains(t, log, "] ERROR: authorization failed (status 500)")
}

func TestVerifyCmd(t *testing.T) {
	e := newEnv(t)
	for _, u := range itestutils.Endpoints {
		e.transport.RegisterResponder(http.MethodHead, u, httpmock.NewStringResponder(http.StatusOK, ""))
	}

	out, err := e.run(t, "", "verify")
	require.NoError(t, err)
	require.Equal(t, 6, strings.Count(out, "OK    "))

	e.transport.RegisterResponder(http.MethodHead, itestutils.TextbooksURL, testutils.NotFoundResponder)
	out, err = e.run(t, "", "verify")
	require.EqualError(t, err, "1 of 6 API URLs failed verification")
	require.Contains(t, out, "FAIL  textbooks: "+itestutils.TextbooksURL)
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "token", "--logLevel", "loud")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log level: loud")
	require.Zero(t, e.transport.GetTotalCallCount())
}

func TestConfigCmd(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "config")
	require.NoError(t, err)
	require.Contains(t, out, "Token URL: "+itestutils.TokenURL+"\n")
	require.Contains(t, out, "Client ID: my-id\n")
	require.Contains(t, out, "Endpoint terms: "+itestutils.TermsURL+"\n")
	require.Contains(t, out, "Timeout: 10s\n")
	require.NotContains(t, out, "my-secret")
	require.Zero(t, e.transport.GetTotalCallCount())
}
