package config

import (
	"strings"
	"time"
)

// Config is the root configuration for the ballooner service.
type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Session  SessionConfig  `yaml:"session"`
}

type AppConfig struct {
	Env         string `yaml:"env"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	LogPath     string `yaml:"log_path"`
	BackendLog  string `yaml:"backend_log_path"`
	BackendDump bool   `yaml:"backend_dump_payload"`
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

// MaxUploadBytes converts the configured upload ceiling to bytes.
func (h HTTPConfig) MaxUploadBytes() int64 {
	return int64(h.MaxUploadMB) << 20
}

// BackendConfig points at the external interpretation service.
// GDTURL overrides BaseURL for the crop analysis endpoint only.
type BackendConfig struct {
	BaseURL                string `yaml:"base_url"`
	GDTURL                 string `yaml:"gdt_url"`
	TimeoutSeconds         int    `yaml:"timeout_seconds"`
	BreakerThreshold       int    `yaml:"breaker_threshold"`
	BreakerCooldownSeconds int    `yaml:"breaker_cooldown_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

func (b BackendConfig) BreakerCooldown() time.Duration {
	return time.Duration(b.BreakerCooldownSeconds) * time.Second
}

// GDTBase returns the base used for /analyze-gdt-crop.
func (b BackendConfig) GDTBase() string {
	if u := strings.TrimSpace(b.GDTURL); u != "" {
		return u
	}
	return b.BaseURL
}

type AnalyzerConfig struct {
	CropWidth       int `yaml:"crop_width"`
	CropHeight      int `yaml:"crop_height"`
	HighlightMillis int `yaml:"highlight_ms"`
}

func (a AnalyzerConfig) HighlightTTL() time.Duration {
	return time.Duration(a.HighlightMillis) * time.Millisecond
}

type SessionConfig struct {
	IdleTTLSeconds         int `yaml:"idle_ttl_seconds"`
	JanitorIntervalSeconds int `yaml:"janitor_interval_seconds"`
}

func (s SessionConfig) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLSeconds) * time.Second
}

func (s SessionConfig) JanitorInterval() time.Duration {
	return time.Duration(s.JanitorIntervalSeconds) * time.Second
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
