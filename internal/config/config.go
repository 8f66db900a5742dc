package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// Environment variable names
const (
	EnvEndpoint  = "MONACA_ENDPOINT"
	EnvProxy     = "MONACA_PROXY"
	EnvLogLevel  = "MONACA_LOG_LEVEL"
	EnvLogFormat = "MONACA_LOG_FORMAT"
	EnvMaxChain  = "MONACA_MAX_CHAIN"
	EnvNoColor   = "NO_COLOR"
)

// Defaults - re-exported from constants for convenience
const (
	DefaultEndpoint = constants.DefaultEndpoint
	DefaultLogLevel = "warn"
)

// Errors
var (
	ErrInvalidEndpoint = errors.New("invalid cloud endpoint. Set MONACA_ENDPOINT to an http(s) URL")
	ErrInvalidProxy    = errors.New("invalid proxy URL. Use the form http://host:port")
	ErrInvalidMaxChain = errors.New("MONACA_MAX_CHAIN must be a non-negative integer")
)

// Config holds the application configuration
type Config struct {
	// Cloud settings
	Endpoint string
	Proxy    string

	// Diagnostics
	LogLevel  string
	LogFormat string
	Debug     bool // --debug flag, forces debug level

	// Output
	NoColor bool

	// MaxChain bounds chained task runs; 0 means unbounded
	MaxChain int

	// Path of the config file that was applied, empty if none
	Source string
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{}
}

// Validate loads the config file and environment, then checks the result.
// Precedence: flags (already set on c) > environment > config file > defaults.
func (c *Config) Validate() error {
	c.applyEnv()

	// A broken config file is reported but does not block commands such as
	// "proxy rm" that exist to repair it. Only values given as flags or in
	// the environment are hard errors.
	fileConfig, path, err := LoadConfigFile()
	if err != nil {
		logging.Warn("ignoring config file", logging.Fields{"error": err.Error()})
	} else {
		c.ApplyFileConfig(c.dropInvalid(fileConfig, path))
		c.Source = path
	}

	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")
	if err := validateEndpoint(c.Endpoint); err != nil {
		return err
	}

	if c.Proxy != "" {
		if err := ValidateProxy(c.Proxy); err != nil {
			return err
		}
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Debug {
		c.LogLevel = "debug"
	}

	if c.MaxChain < 0 {
		return ErrInvalidMaxChain
	}

	return nil
}

// dropInvalid clears file values that would fail validation and that no
// flag or environment variable overrides.
func (c *Config) dropInvalid(fc *FileConfig, path string) *FileConfig {
	if fc == nil {
		return nil
	}
	clean := *fc
	if c.Endpoint == "" && clean.Endpoint != "" && validateEndpoint(strings.TrimSuffix(clean.Endpoint, "/")) != nil {
		logging.Warn("ignoring invalid endpoint in config file", logging.Fields{"path": path, "endpoint": clean.Endpoint})
		clean.Endpoint = ""
	}
	if c.Proxy == "" && clean.Proxy != "" && ValidateProxy(clean.Proxy) != nil {
		logging.Warn("ignoring invalid proxy in config file", logging.Fields{"path": path, "proxy": clean.Proxy})
		clean.Proxy = ""
	}
	return &clean
}

// applyEnv fills fields that flags left empty from the environment.
func (c *Config) applyEnv() {
	if c.Endpoint == "" {
		c.Endpoint = strings.TrimSpace(os.Getenv(EnvEndpoint))
	}
	if c.Proxy == "" {
		c.Proxy = strings.TrimSpace(os.Getenv(EnvProxy))
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv(EnvLogLevel)
	}
	if c.LogFormat == "" {
		c.LogFormat = os.Getenv(EnvLogFormat)
	}
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		c.NoColor = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxChain)); v != "" && c.MaxChain == 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.MaxChain = -1
		} else {
			c.MaxChain = n
		}
	}
}

// LoggingOptions converts the diagnostics settings into logger options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:  logging.ParseLevel(c.LogLevel),
		Format: logging.ParseFormat(c.LogFormat),
		Output: os.Stderr,
	}
}

// APIURL joins the endpoint with an API path.
func (c *Config) APIURL(path string) string {
	return fmt.Sprintf("%s/%s", c.Endpoint, strings.TrimPrefix(path, "/"))
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	return nil
}

// ValidateProxy checks that a proxy URL has an http(s) scheme and a host.
func ValidateProxy(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidProxy
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidProxy
	}
	return nil
}
