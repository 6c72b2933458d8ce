package token_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/RanaTayyab/osu-api-manager/internal/config"
	"github.com/RanaTayyab/osu-api-manager/internal/testutils"
	"github.com/RanaTayyab/osu-api-manager/internal/token"
)

func tokenConfig() config.AccessTokenConfig {
	return config.AccessTokenConfig{
		URL:           testutils.TokenURL,
		ClientID:      "my-id",
		ClientSecret:  "my-secret",
		PayloadFormat: config.PayloadFormatForm,
	}
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func TestGetToken_CachesUntilInvalidated(t *testing.T) {
	client, transport := testutils.NewMockClient()
	counter := testutils.NewCounter(testutils.TokenResponder(t, 0))
	transport.RegisterResponder(http.MethodPost, testutils.TokenURL, counter.Responder())

	p := token.NewProvider(client, tokenConfig())

	for i := 0; i < 3; i++ {
		tok, err := p.GetToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, testutils.AccessToken, tok.Value)
		require.True(t, tok.ExpiresAt.IsZero())
	}
	require.Equal(t, 1, counter.Calls())

	p.Invalidate()
	_, err := p.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, counter.Calls())
	require.Equal(t, 2, p.Refreshes())
}

func TestGetToken_FormPayload(t *testing.T) {
	client, transport := testutils.NewMockClient()
	transport.RegisterResponder(http.MethodPost, testutils.TokenURL, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
		require.NoError(t, req.ParseForm())
		require.Equal(t, "client_credentials", req.PostForm.Get("grant_type"))
		require.Equal(t, "my-id", req.PostForm.Get("client_id"))
		require.Equal(t, "my-secret", req.PostForm.Get("client_secret"))
		require.Equal(t, "public", req.PostForm.Get("scope"))
		return httpmock.NewJsonResponse(http.StatusOK, map[string]string{"access_token": "form-token"})
	})

	cfg := tokenConfig()
	cfg.Extra = map[string]string{"scope": "public"}
	tok, err := token.NewProvider(client, cfg).GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "form-token", tok.Value)
	require.Equal(t, "Bearer form-token", tok.Bearer())
}

func TestGetToken_JSONPayload(t *testing.T) {
	client, transport := testutils.NewMockClient()
	transport.RegisterResponder(http.MethodPost, testutils.TokenURL, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var payload map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		require.Equal(t, "client_credentials", payload["grant_type"])
		require.Equal(t, "my-id", payload["client_id"])
		return httpmock.NewJsonResponse(http.StatusOK, map[string]string{"access_token": "json-token"})
	})

	cfg := tokenConfig()
	cfg.PayloadFormat = config.PayloadFormatJSON
	tok, err := token.NewProvider(client, cfg).GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "json-token", tok.Value)
}

func TestGetToken_ExpiresIn(t *testing.T) {
	client, transport := testutils.NewMockClient()
	counter := testutils.NewCounter(testutils.TokenResponder(t, 3600))
	transport.RegisterResponder(http.MethodPost, testutils.TokenURL, counter.Responder())

	c := &clock{now: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	p := token.NewProvider(client, tokenConfig())
	p.SetClock(c.Now)

	tok, err := p.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, c.now.Add(time.Hour-token.ExpirySkew), tok.ExpiresAt)

	c.now = c.now.Add(30 * time.Minute)
	_, err = p.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, counter.Calls())

	c.now = c.now.Add(30 * time.Minute)
	_, err = p.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, counter.Calls())
}

func TestGetToken_ConfiguredTTL(t *testing.T) {
	client, transport := testutils.NewMockClient()
	counter := testutils.NewCounter(testutils.TokenResponder(t, 0))
	transport.RegisterResponder(http.MethodPost, testutils.TokenURL, counter.Responder())

	c := &clock{now: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	cfg := tokenConfig()
	cfg.TTL = 10 * time.Minute
	p := token.NewProvider(client, cfg)
	p.SetClock(c.Now)

	tok, err := p.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, c.now.Add(10*time.Minute), tok.ExpiresAt)

	c.now = c.now.Add(10 * time.Minute)
	_, err = p.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, counter.Calls())
}

func TestGetToken_Failures(t *testing.T) {
	tt := []struct {
		name      string
		responder httpmock.Responder
		status    int
		message   string
	}{
		{name: "server error", responder: httpmock.NewStringResponder(http.StatusInternalServerError, ""), status: http.StatusInternalServerError, message: "Internal Server Error"},
		{name: "oauth error", responder: testutils.JSONResponder(t, http.StatusUnauthorized, map[string]string{"error": "invalid_client", "error_description": "bad secret"}), status: http.StatusUnauthorized, message: "invalid_client: bad secret"},
		{name: "malformed body", responder: httpmock.NewStringResponder(http.StatusOK, `{"access_token": `), status: http.StatusOK, message: "malformed token response"},
		{name: "missing token", responder: testutils.JSONResponder(t, http.StatusOK, map[string]string{"token_type": "Bearer"}), status: http.StatusOK, message: "no access_token in token response"},
		{name: "transport error", responder: httpmock.NewErrorResponder(errors.New("connection refused")), status: 0, message: "token request failed"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			client, transport := testutils.NewMockClient()
			counter := testutils.NewCounter(tc.responder)
			transport.RegisterResponder(http.MethodPost, testutils.TokenURL, counter.Responder())

			p := token.NewProvider(client, tokenConfig())
			_, err := p.GetToken(context.Background())

			var authErr *token.AuthError
			require.True(t, errors.As(err, &authErr))
			require.Equal(t, tc.status, authErr.Status)
			require.Equal(t, tc.message, authErr.Message)
			// No internal retries
			require.Equal(t, 1, counter.Calls())
			require.Zero(t, p.Refreshes())
		})
	}
}

func TestAccessToken_Expired(t *testing.T) {
	now := time.Now()
	require.False(t, token.AccessToken{Value: "a"}.Expired(now))
	require.False(t, token.AccessToken{Value: "a", ExpiresAt: now.Add(time.Second)}.Expired(now))
	require.True(t, token.AccessToken{Value: "a", ExpiresAt: now}.Expired(now))
}

func TestGetToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	client, transport := testutils.NewMockClient()
	tokenResponder := testutils.TokenResponder(t, 3600)
	counter := testutils.NewCounter(func(req *http.Request) (*http.Response, error) {
		// Hold the request open so the other callers pile up on the lock
		time.Sleep(20 * time.Millisecond)
		return tokenResponder(req)
	})
	transport.RegisterResponder(http.MethodPost, testutils.TokenURL, counter.Responder())

	p := token.NewProvider(client, tokenConfig())

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]token.AccessToken, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = p.GetToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, tokens[0], tokens[i])
	}
	require.Equal(t, 1, counter.Calls())
	require.Equal(t, 1, p.Refreshes())
}
