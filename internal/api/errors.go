package api

import (
	"fmt"

	"github.com/RanaTayyab/osu-api-manager/internal/config"
	"github.com/RanaTayyab/osu-api-manager/internal/token"
)

type (
	AuthError   = token.AuthError
	ConfigError = config.ConfigError
)

// UnknownEndpointError is returned when a call names an endpoint missing from the configuration.
type UnknownEndpointError struct {
	Name string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("unknown endpoint: %q", e.Name)
}

// PathError is returned when path segments would not resolve below the endpoint URL.
type PathError struct {
	Endpoint string
	Segment  string
	Err      error
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid path: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: invalid path segment %q", e.Endpoint, e.Segment)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ApiError is a non-authorization HTTP failure returned by a data endpoint,
// or a successful response whose structured body could not be decoded.
type ApiError struct {
	Status   int
	Endpoint string
	Body     string
	Err      error
}

func (e *ApiError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	if desc := StatusDescription(e.Status); desc != "" {
		msg += " (" + desc + ")"
	}
	return msg
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

// TransportError is a network level failure, including timeouts.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
