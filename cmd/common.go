package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/RanaTayyab/osu-api-manager/internal/api"
	"github.com/RanaTayyab/osu-api-manager/internal/config"
	"github.com/RanaTayyab/osu-api-manager/internal/httpclient"
)

type ContextKey string

// HttpClientKey lets callers inject the HTTP client used by the commands.
const HttpClientKey ContextKey = "httpClient"

// CreateHttpClient returns the injected client if any, else a new client bounded by timeout
func CreateHttpClient(ctx context.Context, timeout time.Duration) *httpclient.HttpClient {
	if ctx != nil {
		if client, ok := ctx.Value(HttpClientKey).(*httpclient.HttpClient); ok && client != nil {
			slog.Debug("using injected HTTP client")
			return client
		}
	}
	return httpclient.New(timeout)
}

// CreateManager builds the ApiManager the commands and the menu share
func CreateManager(ctx context.Context, cfg *config.Config) (*api.Manager, error) {
	slog.Info("Creating API manager...")
	return api.NewFromConfig(cfg, CreateHttpClient(ctx, cfg.Timeout))
}
