package utils

import "github.com/google/uuid"

// NewRequestID returns a fresh identifier for the X-Request-ID header
func NewRequestID() string {
	return uuid.NewString()
}

// IsValidRequestID checks that a request identifier is a UUID.
func IsValidRequestID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
