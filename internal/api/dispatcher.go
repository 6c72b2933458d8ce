package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/RanaTayyab/osu-api-manager/internal/httpclient"
	"github.com/RanaTayyab/osu-api-manager/internal/logsink"
	"github.com/RanaTayyab/osu-api-manager/internal/token"
)

// TokenSource supplies bearer tokens to the Dispatcher.
type TokenSource interface {
	GetToken(ctx context.Context) (token.AccessToken, error)
	Invalidate()
}

// Endpoint is a named, configured URL
type Endpoint struct {
	Name string
	URL  string
}

// Request describes one call against a named endpoint.
type Request struct {
	Endpoint string
	Method   string            // Defaults to GET
	Path     []string          // Extra path segments appended to the endpoint URL, escaped
	Params   map[string]string // Query parameters
	Body     interface{}       // JSON body for POST
}

// Dispatcher performs authenticated calls against the configured endpoints.
// A rejected token is refreshed and the call retried once.
type Dispatcher struct {
	client    *httpclient.HttpClient
	tokens    TokenSource
	endpoints map[string]string
	logger    logsink.Logger
}

func NewDispatcher(client *httpclient.HttpClient, tokens TokenSource, endpoints map[string]string, logger logsink.Logger) *Dispatcher {
	return &Dispatcher{client: client, tokens: tokens, endpoints: endpoints, logger: logger}
}

// Client returns the HTTP client requests go through
func (d *Dispatcher) Client() *httpclient.HttpClient {
	return d.client
}

// Lookup resolves an endpoint by name
func (d *Dispatcher) Lookup(name string) (Endpoint, bool) {
	u, ok := d.endpoints[name]
	return Endpoint{Name: name, URL: u}, ok
}

// Call issues a GET against the named endpoint with params as the query string.
func (d *Dispatcher) Call(ctx context.Context, name string, params map[string]string) (*Response, error) {
	return d.Do(ctx, Request{Endpoint: name, Params: params})
}

// Do executes the request. Every error returned has been written to the log sink exactly once.
func (d *Dispatcher) Do(ctx context.Context, req Request) (*Response, error) {
	endpoint, ok := d.Lookup(req.Endpoint)
	if !ok {
		return nil, d.fail(&UnknownEndpointError{Name: req.Endpoint})
	}

	target, err := resolvePath(endpoint, req.Path)
	if err != nil {
		return nil, d.fail(err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	res, err := d.attempt(ctx, endpoint, method, target, req)
	if err != nil {
		return nil, d.fail(err)
	}

	if isAuthFailure(res.StatusCode()) {
		slog.Info("access token rejected, refreshing", "endpoint", endpoint.Name, "status", res.StatusCode())
		d.tokens.Invalidate()
		d.logger.LogMessage(fmt.Sprintf("%s: status %d, refreshing access token and retrying", endpoint.Name, res.StatusCode()))

		res, err = d.attempt(ctx, endpoint, method, target, req)
		if err != nil {
			return nil, d.fail(err)
		}

		if isAuthFailure(res.StatusCode()) {
			return nil, d.fail(&AuthError{
				Status:  res.StatusCode(),
				Message: fmt.Sprintf("%s rejected a freshly issued token", endpoint.Name),
			})
		}
	}

	statusCode := res.StatusCode()
	if statusCode < 200 || statusCode > 299 {
		return nil, d.fail(&ApiError{Status: statusCode, Endpoint: endpoint.Name, Body: res.String()})
	}

	response, err := newResponse(statusCode, res.Header(), res.Body())
	if err != nil {
		return nil, d.fail(&ApiError{Status: statusCode, Endpoint: endpoint.Name, Body: res.String(), Err: err})
	}

	slog.Debug("call succeeded", "endpoint", endpoint.Name, "status", statusCode)
	return response, nil
}

// resolvePath appends the escaped segments to the endpoint URL.
// The result always stays below the endpoint URL.
func resolvePath(endpoint Endpoint, path []string) (string, error) {
	if len(path) == 0 {
		return endpoint.URL, nil
	}

	segments := make([]string, len(path))
	for i, seg := range path {
		switch seg {
		case "", ".", "..":
			return "", &PathError{Endpoint: endpoint.Name, Segment: seg}
		}
		segments[i] = url.PathEscape(seg)
	}

	target, err := url.JoinPath(endpoint.URL, segments...)
	if err != nil {
		return "", &PathError{Endpoint: endpoint.Name, Err: err}
	}
	if !strings.HasPrefix(target, strings.TrimSuffix(endpoint.URL, "/")+"/") {
		return "", &PathError{Endpoint: endpoint.Name, Segment: strings.Join(path, "/")}
	}
	return target, nil
}

// attempt obtains a token and issues a single request.
func (d *Dispatcher) attempt(ctx context.Context, endpoint Endpoint, method, target string, req Request) (*resty.Response, error) {
	tok, err := d.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	res, err := d.client.Do(ctx, httpclient.Request{
		Method: method,
		URL:    target,
		Token:  tok.Value,
		Query:  req.Params,
		Body:   req.Body,
	})
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint.Name, Err: err}
	}

	return res, nil
}

// fail records err in the log sink and returns it.
func (d *Dispatcher) fail(err error) error {
	slog.Error("call failed", "error", err)
	d.logger.LogError(err.Error())
	return err
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
