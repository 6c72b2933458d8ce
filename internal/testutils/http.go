package testutils

import (
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/RanaTayyab/osu-api-manager/internal/httpclient"
)

const (
	TokenURL     = "https://api.example.edu/oauth2/token"
	APIRoot      = "https://api.example.edu/v1/"
	BeaverBusURL = APIRoot + "beaverbus/routes"
	TermsURL     = APIRoot + "terms"
	TextbooksURL = APIRoot + "textbooks"
	RoutesURL    = APIRoot + "beaverbus/routes"
	ArrivalsURL  = APIRoot + "beaverbus/arrivals"
	VehiclesURL  = APIRoot + "beaverbus/vehicles"
	AccessToken  = "ya29.Gl0UBZ3"
)

// Endpoints maps the configured endpoint names to the mock URLs
var Endpoints = map[string]string{
	"beaver_bus": BeaverBusURL,
	"terms":      TermsURL,
	"textbooks":  TextbooksURL,
	"routes":     RoutesURL,
	"arrivals":   ArrivalsURL,
	"vehicles":   VehiclesURL,
}

// NewMockClient returns an HttpClient whose transport is a fresh httpmock transport.
func NewMockClient() (*httpclient.HttpClient, *httpmock.MockTransport) {
	transport := httpmock.NewMockTransport()
	client := resty.New().SetTimeout(time.Second)
	client.SetTransport(transport)
	return httpclient.NewWithClient(client), transport
}

// Counter wraps a responder and counts how many times it was invoked.
type Counter struct {
	calls     atomic.Int32
	responder httpmock.Responder
}

func NewCounter(responder httpmock.Responder) *Counter {
	return &Counter{responder: responder}
}

func (c *Counter) Responder() httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		c.calls.Add(1)
		return c.responder(req)
	}
}

func (c *Counter) Calls() int {
	return int(c.calls.Load())
}

// TokenResponder answers the token endpoint with AccessToken and the given expires_in.
func TokenResponder(t *testing.T, expiresIn int64) httpmock.Responder {
	body := map[string]interface{}{"access_token": AccessToken, "token_type": "Bearer"}
	if expiresIn > 0 {
		body["expires_in"] = expiresIn
	}
	responder, err := httpmock.NewJsonResponder(http.StatusOK, body)
	require.NoError(t, err)
	return responder
}

// SequenceResponder returns each responder in turn, repeating the last one.
func SequenceResponder(responders ...httpmock.Responder) httpmock.Responder {
	var i atomic.Int32
	return func(req *http.Request) (*http.Response, error) {
		n := int(i.Add(1)) - 1
		if n >= len(responders) {
			n = len(responders) - 1
		}
		return responders[n](req)
	}
}

// JSONResponder is httpmock.NewJsonResponder that fails the test on encoding errors.
func JSONResponder(t *testing.T, status int, body interface{}) httpmock.Responder {
	responder, err := httpmock.NewJsonResponder(status, body)
	require.NoError(t, err)
	return responder
}

// FileResponder serves a testdata JSON file.
func FileResponder(t *testing.T, status int, path string) httpmock.Responder {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewBytesResponse(status, data)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
}
