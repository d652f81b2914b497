package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ballooner/internal/config"
)

// StartupSummary is the banner printed once before serving.
type StartupSummary struct {
	Env            string
	Addr           string
	AllowedOrigins []string
	BackendBase    string
	BackendGDT     string
	BackendTimeout string
	CropSize       string
	HighlightTTL   string
	IdleTTL        string
	Out            io.Writer
}

func NewStartupSummary(cfg *config.Config) *StartupSummary {
	idle := "disabled"
	if cfg.Session.IdleTTLSeconds > 0 {
		idle = cfg.Session.IdleTTL().String()
	}
	return &StartupSummary{
		Env:            cfg.App.Env,
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		BackendBase:    cfg.Backend.BaseURL,
		BackendGDT:     cfg.Backend.GDTBase(),
		BackendTimeout: cfg.Backend.Timeout().String(),
		CropSize:       fmt.Sprintf("%dx%d", cfg.Analyzer.CropWidth, cfg.Analyzer.CropHeight),
		HighlightTTL:   cfg.Analyzer.HighlightTTL().String(),
		IdleTTL:        idle,
	}
}

func (s *StartupSummary) Print() {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	title := "STARTUP SUMMARY"
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "%*s\n", 30+len(title)/2, title)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintln(out, "[HTTP]")
	fmt.Fprintf(out, "  env:             %s\n", s.Env)
	fmt.Fprintf(out, "  listen:          %s\n", s.Addr)
	fmt.Fprintf(out, "  allowed origins: %s\n", formatList(s.AllowedOrigins))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[BACKEND]")
	fmt.Fprintf(out, "  label lookup:    %s\n", s.BackendBase)
	fmt.Fprintf(out, "  gd&t analysis:   %s\n", s.BackendGDT)
	fmt.Fprintf(out, "  timeout:         %s\n", s.BackendTimeout)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[ANALYZER / SESSIONS]")
	fmt.Fprintf(out, "  crop window:     %s\n", s.CropSize)
	fmt.Fprintf(out, "  highlight:       %s\n", s.HighlightTTL)
	fmt.Fprintf(out, "  idle eviction:   %s\n", s.IdleTTL)
	fmt.Fprintln(out, strings.Repeat("=", 60))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
