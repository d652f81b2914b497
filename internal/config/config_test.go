package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, defaultAllowedOrigins, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "http://127.0.0.1:5001", cfg.Backend.BaseURL)
	assert.Equal(t, cfg.Backend.BaseURL, cfg.Backend.GDTBase())
	assert.Equal(t, 60*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 200, cfg.Analyzer.CropWidth)
	assert.Equal(t, 50, cfg.Analyzer.CropHeight)
	assert.Equal(t, 2*time.Second, cfg.Analyzer.HighlightTTL())
	assert.Equal(t, int64(32<<20), cfg.HTTP.MaxUploadBytes())
	assert.Equal(t, 5, cfg.Backend.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.Backend.BreakerCooldown())
}

func TestLoad_ExplicitZeroKeepsValue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
analyzer:
  highlight_ms: 0
backend:
  breaker_threshold: 0
session:
  idle_ttl_seconds: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Analyzer.HighlightMillis)
	assert.Equal(t, 0, cfg.Session.IdleTTLSeconds)
	assert.Equal(t, 0, cfg.Backend.BreakerThreshold)
	assert.Equal(t, defaultJanitorInterval, cfg.Session.JanitorIntervalSeconds)
}

func TestLoad_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.yaml", `
backend:
  base_url: http://backend.internal:9000/
  gdt_url: http://gdt.internal:9100
`)
	path := writeFile(t, dir, "config.yaml", `
include:
  - backend.yaml
http:
  addr: ":9999"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "http://backend.internal:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "http://gdt.internal:9100", cfg.Backend.GDTBase())
}

func TestLoad_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "backend:\n  base_url: http://file:5001\n")
	t.Setenv("BALLOONER_BACKEND_BASE_URL", "http://env:7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:7000", cfg.Backend.BaseURL)
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"bad scheme":   "backend:\n  base_url: ftp://example.com\n",
		"bad crop":     "analyzer:\n  crop_width: -5\n",
		"bad format":   "app:\n  log_format: xml\n",
		"no janitor":   "session:\n  idle_ttl_seconds: 10\n  janitor_interval_seconds: 0\n",
		"missing host": "backend:\n  base_url: http://\n",
		"bad gdt url":  "backend:\n  gdt_url: not a url\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestWatcher_ReloadNotifiesListeners(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "backend:\n  base_url: http://one:1\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.Version())

	got := make(chan string, 1)
	w.Subscribe(func(c *Config) {
		select {
		case got <- c.Backend.BaseURL:
		default:
		}
	})

	writeFile(t, dir, "config.yaml", "backend:\n  base_url: http://two:2\n")
	require.NoError(t, w.reload())
	w.notify()

	select {
	case url := <-got:
		assert.Equal(t, "http://two:2", url)
	case <-time.After(2 * time.Second):
		t.Fatal("listener not called")
	}
	assert.Equal(t, "http://two:2", w.Current().Backend.BaseURL)
	assert.GreaterOrEqual(t, w.Version(), int64(2))
}

func TestWatcher_BadReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "backend:\n  base_url: http://one:1\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	w, err := NewWatcher(path, cfg)
	require.NoError(t, err)

	writeFile(t, dir, "config.yaml", "backend:\n  base_url: ftp://nope\n")
	assert.Error(t, w.reload())
	assert.Equal(t, "http://one:1", w.Current().Backend.BaseURL)
}
