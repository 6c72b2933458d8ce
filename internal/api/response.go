package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Response is the normalized result of a successful call.
// Body holds decoded JSON (maps, slices, numbers...) for structured content types, else the raw text.
type Response struct {
	StatusCode int
	Header     http.Header
	Raw        []byte
	Body       interface{}
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return errors.WithMessage(err, "could not decode response body")
	}
	return nil
}

// Text returns the raw body as a string
func (r *Response) Text() string {
	return string(r.Raw)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func newResponse(status int, header http.Header, raw []byte) (*Response, error) {
	r := &Response{StatusCode: status, Header: header, Raw: raw}
	if len(raw) == 0 {
		return r, nil
	}
	if !isJSON(header.Get("Content-Type")) {
		r.Body = string(raw)
		return r, nil
	}
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.WithMessage(err, "invalid JSON response")
	}
	r.Body = body
	return r, nil
}
