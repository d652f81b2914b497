package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ballooner/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "test", LogLevel: "info", LogFormat: "text"},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0", AllowedOrigins: []string{"*"}, MaxUploadMB: 4},
		Backend:  config.BackendConfig{BaseURL: "http://127.0.0.1:5001", TimeoutSeconds: 10},
		Analyzer: config.AnalyzerConfig{CropWidth: 200, CropHeight: 50, HighlightMillis: 2000},
		Session:  config.SessionConfig{IdleTTLSeconds: 0, JanitorIntervalSeconds: 60},
	}
}

func TestNewApp_Assembles(t *testing.T) {
	a, err := NewApp(testConfig())
	require.NoError(t, err)
	require.NotNil(t, a.Server())
	require.NotNil(t, a.Sessions())
	assert.Equal(t, "127.0.0.1:0", a.Server().Addr())

	rec := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, a.Sessions().Len())
}

func TestNewApp_NilConfig(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)
}

func TestStartupSummary_Print(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.GDTURL = "http://gdt:9000"
	s := NewStartupSummary(cfg)
	var buf bytes.Buffer
	s.Out = &buf
	s.Print()

	out := buf.String()
	assert.Contains(t, out, "STARTUP SUMMARY")
	assert.Contains(t, out, "http://127.0.0.1:5001")
	assert.Contains(t, out, "http://gdt:9000")
	assert.Contains(t, out, "200x50")
	assert.Contains(t, out, "idle eviction:   disabled")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a, err := NewApp(testConfig())
	require.NoError(t, err)
	a.Summary.Out = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}
