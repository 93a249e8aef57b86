package types

import (
	"errors"
	"net/url"
	"time"
)

// Config holds the settings the client needs to reach the activities API.
type Config struct {
	APIURL    string        `json:"api_url" yaml:"api_url"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	LogLevel  string        `json:"log_level" yaml:"log_level"`
	LogFormat string        `json:"log_format" yaml:"log_format"`
	ToastTTL  time.Duration `json:"toast_ttl" yaml:"toast_ttl"`
}

// Defaults applied when a value is missing from config.yaml and the environment.
const (
	DefaultAPIURL    = "http://localhost:5000/api"
	DefaultTimeout   = 10 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultToastTTL  = 5 * time.Second
)

// Config validation errors.
var (
	ErrAPIURLEmpty      = errors.New("api_url must not be empty")
	ErrAPIURLInvalid    = errors.New("api_url must be an absolute http(s) URL")
	ErrTimeoutInvalid   = errors.New("timeout must be positive")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var knownLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		ToastTTL:  DefaultToastTTL,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. Empty log settings are accepted and fall back
// to the defaults when the logger is built.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return ErrAPIURLEmpty
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrAPIURLInvalid
	}
	if c.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if c.LogFormat != "" && !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}
