package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/RanaTayyab/osu-api-manager/internal/common"
	"github.com/RanaTayyab/osu-api-manager/internal/utils"
)

// HttpClient is a wrapper around the resty.Client
type HttpClient struct {
	Client *resty.Client
}

// New creates a client bounding every call with timeout.
// Resty retries are disabled; callers decide what is retried.
func New(timeout time.Duration) *HttpClient {
	return NewWithClient(resty.New().SetTimeout(timeout))
}

func NewWithClient(client *resty.Client) *HttpClient {
	return &HttpClient{Client: client.SetRetryCount(0).SetLogger(restyLogger{})}
}

// restyLogger sends resty's own messages to slog instead of stderr.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...))
}

// Request describes a single outbound call
type Request struct {
	Method string
	URL    string
	Token  string            // Bearer token, omitted when empty
	Query  map[string]string // Query string parameters
	Form   map[string]string // Form encoded body
	Body   interface{}       // JSON body, ignored when Form is set
	Result interface{}       // Decoded from a 2xx JSON body
	Error  interface{}       // Decoded from a 4xx/5xx JSON body, best effort
}

// DecodeError is returned with the response when a 2xx body does not decode into Result.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Do performs the request. HTTP error statuses are left to the caller; a non-nil error is
// a transport failure, or a *DecodeError returned along with the response.
func (c *HttpClient) Do(ctx context.Context, req Request) (*resty.Response, error) {
	requestID := utils.NewRequestID()
	slog.Debug(req.Method, "url", req.URL, "query", req.Query, "requestID", requestID)

	r := c.Client.R().
		SetContext(ctx).
		SetHeader(common.RequestIDHeader, requestID)

	if req.Token != "" {
		r.SetAuthToken(req.Token)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	switch {
	case req.Form != nil:
		r.SetFormData(req.Form)
	case req.Body != nil:
		r.SetHeader(common.ContentType, common.ContentTypeJSON).SetBody(req.Body)
	}

	if req.Result != nil || req.Error != nil {
		// Token endpoints do not always label their JSON
		r.ForceContentType(common.ContentTypeJSON)
		if req.Result != nil {
			r.SetResult(req.Result)
		}
		if req.Error != nil {
			r.SetError(req.Error)
		}
	}

	res, err := r.Execute(req.Method, req.URL)
	if err != nil {
		if res != nil && res.RawResponse != nil {
			slog.Debug("response decoding failed", "url", req.URL, "requestID", requestID, "status", res.StatusCode(), "error", err)
			return res, &DecodeError{Err: err}
		}
		slog.Debug("request failed", "url", req.URL, "requestID", requestID, "error", err)
		return nil, err
	}

	slog.Debug("response", "url", req.URL, "requestID", requestID, "status", res.StatusCode(), "duration", res.Time())
	return res, nil
}
