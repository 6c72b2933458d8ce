package config

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultLogFile     = "logfile.txt"
	DefaultLogTimezone = "America/Los_Angeles"

	PayloadFormatForm = "form"
	PayloadFormatJSON = "json"
)

// RequiredEndpoints are the endpoint names every configuration must provide.
var RequiredEndpoints = []string{"beaver_bus", "terms", "textbooks", "routes", "arrivals", "vehicles"}

// ConfigError reports a missing or malformed configuration key.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func missing(key string) *ConfigError {
	return &ConfigError{Key: key, Reason: "is required"}
}

// AccessTokenConfig describes how to obtain a bearer token
type AccessTokenConfig struct {
	URL           string            // Token endpoint
	ClientID      string            // OAuth2 client id
	ClientSecret  string            // OAuth2 client secret
	Extra         map[string]string // Additional payload fields sent as-is
	PayloadFormat string            // "form" or "json"
	TTL           time.Duration     // Fallback token lifetime when the response has no expiry, 0 means until rejected
}

// Payload returns the token request payload, including the client credentials grant type.
func (c AccessTokenConfig) Payload() map[string]string {
	payload := make(map[string]string, len(c.Extra)+3)
	for k, v := range c.Extra {
		payload[k] = v
	}
	payload["client_id"] = c.ClientID
	payload["client_secret"] = c.ClientSecret
	payload["grant_type"] = "client_credentials"
	return payload
}

// Config represents the validated application configuration
type Config struct {
	AccessToken AccessTokenConfig
	Endpoints   map[string]string // Endpoint name to URL
	Timeout     time.Duration     // Per HTTP call timeout
	LogFile     string            // Append-only log file
	LogTimezone string            // IANA zone used for log timestamps
}

// Print the Config to w, omits the client secret
func (c Config) Print(w io.Writer) {
	fmt.Fprintf(w, "Token URL: %v\n", c.AccessToken.URL)
	fmt.Fprintf(w, "Client ID: %v\n", c.AccessToken.ClientID)
	fmt.Fprintf(w, "Payload format: %v\n", c.AccessToken.PayloadFormat)
	for _, name := range c.EndpointNames() {
		fmt.Fprintf(w, "Endpoint %s: %v\n", name, c.Endpoints[name])
	}
	fmt.Fprintf(w, "Timeout: %v\n", c.Timeout)
	fmt.Fprintf(w, "Log file: %v\n", c.LogFile)
}

// EndpointNames returns the configured endpoint names in sorted order
func (c Config) EndpointNames() []string {
	names := make([]string, 0, len(c.Endpoints))
	for name := range c.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate the Config making sure all required fields are present and valid
func (c Config) Validate() error {
	if c.AccessToken.URL == "" {
		return missing("access_token.url")
	}
	if err := validateURL("access_token.url", c.AccessToken.URL); err != nil {
		return err
	}

	if c.AccessToken.ClientID == "" {
		return missing("access_token.payload.client_id")
	}

	if c.AccessToken.ClientSecret == "" {
		return missing("access_token.payload.client_secret")
	}

	switch c.AccessToken.PayloadFormat {
	case PayloadFormatForm, PayloadFormatJSON:
	default:
		return &ConfigError{Key: "access_token.payload_format", Reason: fmt.Sprintf("unsupported format %q", c.AccessToken.PayloadFormat)}
	}

	if c.AccessToken.TTL < 0 {
		return &ConfigError{Key: "access_token.ttl", Reason: "must be >= 0"}
	}

	for _, name := range RequiredEndpoints {
		if _, ok := c.Endpoints[name]; !ok {
			return missing("api_urls." + name)
		}
	}

	for _, name := range c.EndpointNames() {
		if err := validateURL("api_urls."+name, c.Endpoints[name]); err != nil {
			return err
		}
	}

	if c.Timeout <= 0 {
		return &ConfigError{Key: "timeout", Reason: "must be > 0"}
	}

	if c.LogFile == "" {
		return missing("log_file")
	}

	if _, err := time.LoadLocation(c.LogTimezone); err != nil {
		return &ConfigError{Key: "log_timezone", Reason: err.Error()}
	}

	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return missing(key)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return &ConfigError{Key: key, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Key: key, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	return nil
}

// Load reads the Config from viper and validates it.
// Both `api_urls` and `apiUrls` are accepted for the endpoint map; `api_urls` wins on conflict.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_timezone", DefaultLogTimezone)
	v.SetDefault("access_token.payload_format", PayloadFormatForm)

	payload := v.GetStringMapString("access_token.payload")
	extra := make(map[string]string)
	for k, val := range payload {
		switch k {
		case "client_id", "client_secret", "grant_type":
		default:
			extra[k] = val
		}
	}

	endpoints := make(map[string]string)
	// viper lower-cases keys, so `apiUrls` is stored as `apiurls`
	for _, key := range []string{"apiurls", "api_urls"} {
		for name, u := range v.GetStringMapString(key) {
			endpoints[name] = u
		}
	}

	ttl, err := duration(v, "access_token.ttl")
	if err != nil {
		return nil, err
	}

	timeout, err := duration(v, "timeout")
	if err != nil {
		return nil, err
	}

	c := &Config{
		AccessToken: AccessTokenConfig{
			URL:           v.GetString("access_token.url"),
			ClientID:      firstNonEmpty(v.GetString("access_token.payload.client_id"), payload["client_id"]),
			ClientSecret:  firstNonEmpty(v.GetString("access_token.payload.client_secret"), payload["client_secret"]),
			Extra:         extra,
			PayloadFormat: strings.ToLower(v.GetString("access_token.payload_format")),
			TTL:           ttl,
		},
		Endpoints:   endpoints,
		Timeout:     timeout,
		LogFile:     v.GetString("log_file"),
		LogTimezone: v.GetString("log_timezone"),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// duration parses key as a Go duration. A bare number has no unit and is rejected.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ConfigError{Key: key, Reason: fmt.Sprintf("invalid duration %q, expected a value with a unit such as 10s", raw)}
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
