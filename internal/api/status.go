package api

var statusDescriptions = map[int]string{
	200: "OK - The request has succeeded.",
	400: "Bad Request - The server could not understand the request due to invalid syntax or missing parameters.",
	401: "Unauthorized - The request requires user authentication or authentication failed.",
	403: "Forbidden - The server understood the request but refuses to authorize it.",
	404: "Not Found - The requested resource could not be found.",
	500: "Internal Server Error - The server encountered an unexpected condition that prevented it from fulfilling the request.",
	502: "Bad Gateway - The server received an invalid response from an upstream server.",
	503: "Service Unavailable - The server is currently unable to handle the request due to a temporary overload or maintenance.",
	504: "Gateway Timeout - The server did not receive a timely response from an upstream server.",
	505: "HTTP Version Not Supported - The server does not support the HTTP protocol version used in the request.",
}

// StatusDescription returns a human readable description of an HTTP status code,
// or an empty string if the code is not recognized.
func StatusDescription(code int) string {
	return statusDescriptions[code]
}
