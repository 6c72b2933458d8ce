package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/RanaTayyab/osu-api-manager/internal/config"
	"github.com/RanaTayyab/osu-api-manager/internal/httpclient"
	"github.com/RanaTayyab/osu-api-manager/internal/logsink"
	"github.com/RanaTayyab/osu-api-manager/internal/token"
)

// Manager owns the configuration, the token provider and the dispatcher.
// It is constructed once at startup and passed to the menu and commands.
type Manager struct {
	Config     *config.Config
	Tokens     *token.Provider
	Dispatcher *Dispatcher
	Logger     logsink.Logger
}

// New wires a Manager around an existing client and logger.
func New(cfg *config.Config, logger logsink.Logger, client *httpclient.HttpClient) *Manager {
	tokens := token.NewProvider(client, cfg.AccessToken)
	return &Manager{
		Config:     cfg,
		Tokens:     tokens,
		Dispatcher: NewDispatcher(client, tokens, cfg.Endpoints, logger),
		Logger:     logger,
	}
}

// NewFromConfig builds a Manager writing to the configured log file.
// A nil client is replaced by one bounded by the configured timeout.
func NewFromConfig(cfg *config.Config, client *httpclient.HttpClient) (*Manager, error) {
	logger, err := logsink.NewFileLogger(cfg.LogFile, cfg.LogTimezone)
	if err != nil {
		return nil, errors.WithMessage(err, "could not create log sink")
	}
	if client == nil {
		client = httpclient.New(cfg.Timeout)
	}
	return New(cfg, logger, client), nil
}

func (m *Manager) Call(ctx context.Context, name string, params map[string]string) (*Response, error) {
	return m.Dispatcher.Call(ctx, name, params)
}

func (m *Manager) Do(ctx context.Context, req Request) (*Response, error) {
	return m.Dispatcher.Do(ctx, req)
}

// Token acquires a token directly, logging a failure once.
func (m *Manager) Token(ctx context.Context) (token.AccessToken, error) {
	t, err := m.Tokens.GetToken(ctx)
	if err != nil {
		slog.Error("could not acquire access token", "error", err)
		m.Logger.LogError(err.Error())
		return token.AccessToken{}, err
	}
	return t, nil
}

// Endpoints returns the configured endpoints sorted by name
func (m *Manager) Endpoints() []Endpoint {
	names := m.Config.EndpointNames()
	endpoints := make([]Endpoint, 0, len(names))
	for _, name := range names {
		endpoints = append(endpoints, Endpoint{Name: name, URL: m.Config.Endpoints[name]})
	}
	return endpoints
}

// EndpointCheck is the outcome of probing one endpoint
type EndpointCheck struct {
	Endpoint
	Err error
}

// OK reports whether the endpoint answered successfully
func (c EndpointCheck) OK() bool {
	return c.Err == nil
}

// Verify checks the token endpoint and probes every configured endpoint with HEAD.
// A token failure aborts the verification; endpoint failures are collected.
func (m *Manager) Verify(ctx context.Context) ([]EndpointCheck, error) {
	if _, err := m.Token(ctx); err != nil {
		return nil, errors.WithMessage(err, "invalid access_token configuration")
	}

	var checks []EndpointCheck
	for _, endpoint := range m.Endpoints() {
		_, err := m.Dispatcher.Do(ctx, Request{Endpoint: endpoint.Name, Method: http.MethodHead})
		checks = append(checks, EndpointCheck{Endpoint: endpoint, Err: err})
	}
	return checks, nil
}
