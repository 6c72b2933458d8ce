package token

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/RanaTayyab/osu-api-manager/internal/config"
	"github.com/RanaTayyab/osu-api-manager/internal/httpclient"
)

// ExpirySkew is subtracted from `expires_in` so a token is refreshed slightly before the server drops it.
const ExpirySkew = 30 * time.Second

// Provider acquires and caches a single bearer token.
// It is safe for concurrent use; the cache is replaced atomically under the lock.
type Provider struct {
	client *httpclient.HttpClient
	cfg    config.AccessTokenConfig
	now    func() time.Time

	mu        sync.Mutex
	token     *AccessToken
	refreshes int
}

func NewProvider(client *httpclient.HttpClient, cfg config.AccessTokenConfig) *Provider {
	return &Provider{client: client, cfg: cfg, now: time.Now}
}

// SetClock overrides the time source used for expiry checks.
func (p *Provider) SetClock(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

// GetToken returns the cached token, refreshing it first when absent or expired.
func (p *Provider) GetToken(ctx context.Context) (AccessToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != nil && !p.token.Expired(p.now()) {
		return *p.token, nil
	}

	p.token = nil
	t, err := p.fetch(ctx)
	if err != nil {
		return AccessToken{}, err
	}
	p.token = &t
	p.refreshes++

	return t, nil
}

// Invalidate drops the cached token so the next GetToken refreshes.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	slog.Debug("invalidating access token")
	p.token = nil
}

// Refreshes returns how many tokens have been acquired
func (p *Provider) Refreshes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshes
}

func (p *Provider) fetch(ctx context.Context) (AccessToken, error) {
	slog.Debug("requesting access token", "url", p.cfg.URL, "client_id", p.cfg.ClientID, "client_secret", "[REDACTED]")

	var body Response
	var oauthErr OAuthError
	req := httpclient.Request{Method: http.MethodPost, URL: p.cfg.URL, Result: &body, Error: &oauthErr}
	if p.cfg.PayloadFormat == config.PayloadFormatJSON {
		req.Body = p.cfg.Payload()
	} else {
		req.Form = p.cfg.Payload()
	}

	response, err := p.client.Do(ctx, req)
	var decodeErr *httpclient.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return AccessToken{}, &AuthError{Status: response.StatusCode(), Message: "malformed token response", Err: err}
	case err != nil:
		return AccessToken{}, &AuthError{Message: "token request failed", Err: err}
	}

	statusCode := response.StatusCode()
	if statusCode < 200 || statusCode > 299 {
		return AccessToken{}, &AuthError{Status: statusCode, Message: upstreamMessage(oauthErr, response.String(), http.StatusText(statusCode))}
	}

	if body.AccessToken == "" {
		return AccessToken{}, &AuthError{Status: statusCode, Message: "no access_token in token response"}
	}

	t := AccessToken{Value: body.AccessToken}
	switch {
	case body.ExpiresIn > 0:
		lifetime := time.Duration(body.ExpiresIn) * time.Second
		if lifetime > 2*ExpirySkew {
			lifetime -= ExpirySkew
		}
		t.ExpiresAt = p.now().Add(lifetime)
	case p.cfg.TTL > 0:
		t.ExpiresAt = p.now().Add(p.cfg.TTL)
	}

	slog.Debug("access token acquired", "expiresAt", t.ExpiresAt)
	return t, nil
}

// upstreamMessage picks a human readable reason for a rejected token request.
func upstreamMessage(oauthErr OAuthError, body, fallback string) string {
	if oauthErr.Error != "" {
		if oauthErr.ErrorDescription != "" {
			return oauthErr.Error + ": " + oauthErr.ErrorDescription
		}
		return oauthErr.Error
	}
	if s := strings.TrimSpace(body); s != "" {
		return s
	}
	return fallback
}
