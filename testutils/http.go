package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RanaTayyab/osu-api-manager/internal/testutils"
)

const configTemplate = `access_token:
  url: %s
  payload:
    client_id: my-id
    client_secret: my-secret
api_urls:
  beaver_bus: %s
  terms: %s
  textbooks: %s
  routes: %s
  arrivals: %s
  vehicles: %s
log_file: %s
log_timezone: America/Los_Angeles
`

// WriteConfig writes a configuration file pointing at the mock URLs into dir
// and returns its path along with the configured log file.
func WriteConfig(t *testing.T, dir string) (configPath, logPath string) {
	logPath = filepath.Join(dir, "logfile.txt")
	configPath = filepath.Join(dir, "configuration.yaml")
	doc := fmt.Sprintf(configTemplate,
		testutils.TokenURL,
		testutils.BeaverBusURL,
		testutils.TermsURL,
		testutils.TextbooksURL,
		testutils.RoutesURL,
		testutils.ArrivalsURL,
		testutils.VehiclesURL,
		logPath,
	)
	require.NoError(t, os.WriteFile(configPath, []byte(doc), 0644))
	return configPath, logPath
}

// ReadLog returns the log file content, or an empty string if it does not exist.
func ReadLog(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}
