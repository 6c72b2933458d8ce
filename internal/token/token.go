package token

import (
	"fmt"
	"time"
)

// AccessToken is a bearer token and its expiry.
// A zero ExpiresAt means the token is valid until a data endpoint rejects it.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the token is expired at now.
func (t AccessToken) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// Bearer returns the Authorization header value
func (t AccessToken) Bearer() string {
	return "Bearer " + t.Value
}

// Response is the token endpoint payload.
type Response struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// OAuthError is the RFC 6749 error body of a rejected token request.
type OAuthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AuthError reports a failed token acquisition or a persistent authorization failure.
type AuthError struct {
	Status  int // Upstream HTTP status, 0 when the request never completed
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authorization failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authorization failed: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
