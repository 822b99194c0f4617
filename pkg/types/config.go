// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
	"time"
)

// HTTPConfig holds shared HTTP settings used for portal requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "catalog-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// PortalConfig holds connection settings for the catalog portal.
type PortalConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// URL is the portal base URL (e.g. "https://geo.example.org/portal").
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Token is a pre-issued portal access token. Session establishment is
	// handled outside this tool.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// Username is informational; it is shown in the startup log line.
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`

	// RateLimitRetries is the number of HTTP 429 retries per request.
	// Zero disables retrying: provider failures propagate unchanged.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// MatchConfig holds the default matcher settings.
type MatchConfig struct {
	// Mode is exact, partial, or fuzzy (default exact).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// FuzzyThreshold is the minimum similarity ratio for fuzzy matches (default 0.80).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Env selects the logger flavour: local/dev (console) or prod (JSON).
	Env string `json:"env" yaml:"env" mapstructure:"env"`

	// Level overrides the log level: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all catalog-search settings.
type Config struct {
	Portal  PortalConfig  `json:"portal" yaml:"portal" mapstructure:"portal"`
	Match   MatchConfig   `json:"match" yaml:"match" mapstructure:"match"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// Defaults used by ApplyDefaults.
const (
	DefaultTimeout        = 60 * time.Second
	DefaultUserAgent      = "catalog-search/0.1"
	DefaultMatchMode      = "exact"
	DefaultFuzzyThreshold = 0.80
	DefaultLogEnv         = "local"
	DefaultLogLevel       = "warn"
)

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Portal.Timeout <= 0 {
		c.Portal.Timeout = DefaultTimeout
	}
	if c.Portal.UserAgent == "" {
		c.Portal.UserAgent = DefaultUserAgent
	}
	if c.Match.Mode == "" {
		c.Match.Mode = DefaultMatchMode
	}
	if c.Match.FuzzyThreshold == 0 {
		c.Match.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.Logging.Env == "" {
		c.Logging.Env = DefaultLogEnv
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Portal.URL == "" {
		return fmt.Errorf("portal url is required")
	}
	if c.Portal.RateLimitRetries < 0 {
		return fmt.Errorf("rate_limit_retries must be >= 0, got %d", c.Portal.RateLimitRetries)
	}
	if math.IsNaN(c.Match.FuzzyThreshold) || c.Match.FuzzyThreshold < 0 || c.Match.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be within [0,1], got %v", c.Match.FuzzyThreshold)
	}
	return nil
}
