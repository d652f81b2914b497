package logger

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetFormat(format)
	SetOutput(&buf)
	t.Cleanup(func() {
		SetFormat("text")
		SetOutput(os.Stdout)
		SetLevel("info")
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, "text")
	SetLevel("warn")
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")

	SetLevel("debug")
	Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestSessionLoggerJSON(t *testing.T) {
	buf := captureLogs(t, "json")
	Session("abc").Info("balloon added", "number", 3)
	out := buf.String()
	assert.Contains(t, out, `"session":"abc"`)
	assert.Contains(t, out, `"number":3`)
}

func TestBackendExchangeLog(t *testing.T) {
	var buf bytes.Buffer
	SetBackendWriter(&buf)
	t.Cleanup(func() {
		SetBackendWriter(nil)
		EnableBackendPayloadDump(false)
	})

	LogBackendRequest("/get-value-for-label", "req-1", map[string]string{"label": "Width"}, map[string]int{"sourceFile": 42})
	LogBackendResponse("/get-value-for-label", "req-1", 200, `{"value":"1"}`)
	out := buf.String()
	assert.Contains(t, out, "[BACKEND][request][/get-value-for-label][req-1]")
	assert.Contains(t, out, `label="Width"`)
	assert.Contains(t, out, "sourceFile=<42 bytes>")
	assert.NotContains(t, out, `{"value":"1"}`)

	buf.Reset()
	EnableBackendPayloadDump(true)
	LogBackendResponse("/get-value-for-label", "req-2", 200, `{"value":"1"}`)
	assert.Contains(t, buf.String(), "--- RAW ---")
	assert.Contains(t, buf.String(), `{"value":"1"}`)
}
