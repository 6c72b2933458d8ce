package common

const (
	ContentType     = "Content-Type"
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	RequestIDHeader = "X-Request-ID"
)
