// Package config loads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bashhack/otpimport/internal/constants"
)

// Config holds every tunable of the resolver and the CLI
type Config struct {
	Fetch struct {
		Timeout      time.Duration
		UserAgent    string
		MaxBytes     int64
		StrictStatus bool
	}

	Confirmation struct {
		Size int
	}

	Sync struct {
		URL     string
		Timeout time.Duration
		Enabled bool
	}

	Logging struct {
		Level  string
		Format string
	}
}

// For testing
var loadDotEnv = func() error { return godotenv.Load() }

// Load returns defaults overridden by OTPIMPORT_* environment variables.
// A missing .env file is not an error.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if err := cfg.applyEnv(env{prefix: constants.EnvPrefix}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in settings
func Default() *Config {
	cfg := &Config{}
	cfg.Fetch.Timeout = constants.FetchTimeout
	cfg.Fetch.UserAgent = constants.FetchUserAgent
	cfg.Fetch.MaxBytes = constants.MaxImageBytes
	cfg.Confirmation.Size = constants.ConfirmationSize
	cfg.Sync.URL = constants.TimeSyncURL
	cfg.Sync.Timeout = constants.TimeSyncTimeout
	cfg.Sync.Enabled = true
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "console"
	return cfg
}

func (c *Config) applyEnv(e env) error {
	var err error
	if c.Fetch.Timeout, err = e.duration("FETCH_TIMEOUT", c.Fetch.Timeout); err != nil {
		return err
	}
	c.Fetch.UserAgent = e.get("USER_AGENT", c.Fetch.UserAgent)
	if c.Fetch.MaxBytes, err = e.int64("MAX_IMAGE_BYTES", c.Fetch.MaxBytes); err != nil {
		return err
	}
	c.Fetch.StrictStatus = e.bool("STRICT_STATUS", c.Fetch.StrictStatus)

	size, err := e.int64("QR_SIZE", int64(c.Confirmation.Size))
	if err != nil {
		return err
	}
	c.Confirmation.Size = int(size)

	c.Sync.URL = e.get("TIME_SYNC_URL", c.Sync.URL)
	if c.Sync.Timeout, err = e.duration("TIME_SYNC_TIMEOUT", c.Sync.Timeout); err != nil {
		return err
	}
	c.Sync.Enabled = e.bool("TIME_SYNC", c.Sync.Enabled)

	c.Logging.Level = strings.ToLower(e.get("LOG_LEVEL", c.Logging.Level))
	c.Logging.Format = strings.ToLower(e.get("LOG_FORMAT", c.Logging.Format))
	return nil
}

// Validate rejects settings the resolver cannot run with
func (c *Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("%sFETCH_TIMEOUT must be positive", constants.EnvPrefix)
	}
	if c.Confirmation.Size < 21 {
		return fmt.Errorf("%sQR_SIZE must be at least 21 pixels, got %d", constants.EnvPrefix, c.Confirmation.Size)
	}
	if c.Sync.Enabled && c.Sync.URL == "" {
		return fmt.Errorf("%sTIME_SYNC_URL is required when time sync is enabled", constants.EnvPrefix)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT must be console or json, got %q", constants.EnvPrefix, c.Logging.Format)
	}
	return nil
}

// env is a prefixed view over environment variables
type env struct{ prefix string }

func (e env) get(key, def string) string {
	v := strings.TrimSpace(os.Getenv(e.prefix + key))
	if v == "" {
		return def
	}
	return v
}

func (e env) bool(key string, def bool) bool {
	switch strings.ToLower(e.get(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func (e env) int64(key string, def int64) (int64, error) {
	v := e.get(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", e.prefix, key, v, err)
	}
	return n, nil
}

// duration accepts Go durations ("15s") or plain seconds ("15")
func (e env) duration(key string, def time.Duration) (time.Duration, error) {
	v := e.get(key, "")
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", e.prefix, key, v, err)
	}
	return d, nil
}
