package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate performs basic sanity checks after defaults are applied.
func validate(c *Config) error {
	if err := c.Backend.validate(); err != nil {
		return err
	}
	if err := c.Analyzer.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if c.HTTP.MaxUploadMB <= 0 {
		return fmt.Errorf("http.max_upload_mb must be > 0")
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json (got %q)", c.App.LogFormat)
	}
	return nil
}

func (b *BackendConfig) validate() error {
	if err := validateBaseURL("backend.base_url", b.BaseURL); err != nil {
		return err
	}
	if b.GDTURL != "" {
		if err := validateBaseURL("backend.gdt_url", b.GDTURL); err != nil {
			return err
		}
	}
	if b.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be > 0")
	}
	if b.BreakerThreshold < 0 {
		return fmt.Errorf("backend.breaker_threshold must be >= 0")
	}
	if b.BreakerThreshold > 0 && b.BreakerCooldownSeconds <= 0 {
		return fmt.Errorf("backend.breaker_cooldown_seconds must be > 0 when the breaker is enabled")
	}
	return nil
}

func (a *AnalyzerConfig) validate() error {
	if a.CropWidth <= 0 || a.CropHeight <= 0 {
		return fmt.Errorf("analyzer crop size must be positive (got %dx%d)", a.CropWidth, a.CropHeight)
	}
	if a.HighlightMillis < 0 {
		return fmt.Errorf("analyzer.highlight_ms must be >= 0")
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.IdleTTLSeconds < 0 {
		return fmt.Errorf("session.idle_ttl_seconds must be >= 0")
	}
	if s.IdleTTLSeconds > 0 && s.JanitorIntervalSeconds <= 0 {
		return fmt.Errorf("session.janitor_interval_seconds must be > 0 when idle eviction is enabled")
	}
	return nil
}

func validateBaseURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s cannot be empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid url: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https (got %q)", key, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", key)
	}
	return nil
}
