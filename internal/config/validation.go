package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for consistency. It is called by Load
// after all sources are merged; a failed validation aborts startup.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: set base_url or OPENL_BASE_URL", ErrMissingBaseURL)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidBaseURL, c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not supported", ErrInvalidBaseURL, u.Scheme)
	}

	// Basic auth needs both halves; a personal access token stands alone.
	// Fully anonymous access is allowed for local OpenL instances.
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("%w: set both username and password, or neither", ErrIncompleteBasicAuth)
	}

	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 600 {
		return fmt.Errorf("%w: timeout_seconds must be 1-600, got %d", ErrInvalidTimeout, c.TimeoutSeconds)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitRPS > 1000 {
		return fmt.Errorf("%w: rate_limit_rps must be in (0, 1000], got %g", ErrInvalidRateLimit, c.RateLimitRPS)
	}

	if len(c.SessionHeaders) == 0 {
		return fmt.Errorf("%w: session_headers must name at least the execution id header", ErrNoSessionHeaders)
	}

	return nil
}
