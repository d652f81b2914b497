package config

import "strings"

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultHTTPAddr        = ":8080"
	defaultMaxUploadMB     = 32
	defaultBackendBaseURL  = "http://127.0.0.1:5001"
	defaultBackendTimeout  = 60
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30
	defaultCropWidth       = 200
	defaultCropHeight      = 50
	defaultHighlightMillis = 2000
	defaultIdleTTL         = 4 * 60 * 60
	defaultJanitorInterval = 60
)

var defaultAllowedOrigins = []string{
	"https://feasibility-1.onrender.com",
	"http://127.0.0.1:5001",
}

// applyDefaults fills every section, skipping keys the user set explicitly.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
	c.Backend.applyDefaults(keys)
	c.Analyzer.applyDefaults(keys)
	c.Session.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr),
		intFieldDefault("http.max_upload_mb", &h.MaxUploadMB, defaultMaxUploadMB),
		fieldDefault{
			key:   "http.allowed_origins",
			need:  func() bool { return len(h.AllowedOrigins) == 0 },
			apply: func() { h.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...) },
		},
	)
	h.AllowedOrigins = normalizeOrigins(h.AllowedOrigins)
}

func (b *BackendConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("backend.base_url", &b.BaseURL, defaultBackendBaseURL),
		intFieldDefault("backend.timeout_seconds", &b.TimeoutSeconds, defaultBackendTimeout),
		intFieldDefault("backend.breaker_threshold", &b.BreakerThreshold, defaultBreakerFailures),
		intFieldDefault("backend.breaker_cooldown_seconds", &b.BreakerCooldownSeconds, defaultBreakerCooldown),
	)
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	b.GDTURL = strings.TrimRight(strings.TrimSpace(b.GDTURL), "/")
}

func (a *AnalyzerConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("analyzer.crop_width", &a.CropWidth, defaultCropWidth),
		intFieldDefault("analyzer.crop_height", &a.CropHeight, defaultCropHeight),
		intFieldDefault("analyzer.highlight_ms", &a.HighlightMillis, defaultHighlightMillis),
	)
}

func (s *SessionConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("session.idle_ttl_seconds", &s.IdleTTLSeconds, defaultIdleTTL),
		intFieldDefault("session.janitor_interval_seconds", &s.JanitorIntervalSeconds, defaultJanitorInterval),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return nil
	}
	out := make([]string, 0, len(origins))
	seen := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
