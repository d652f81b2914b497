package app

import (
	"ballooner/internal/balloon"
	"ballooner/internal/click"
	"ballooner/internal/config"
	"ballooner/internal/gateway/backend"
	"ballooner/internal/gdt"
	"ballooner/internal/overlay"
	"ballooner/internal/session"
	"ballooner/internal/transport/http/api"
)

func provideBackendClient(cfg *config.Config) (*backend.Client, error) {
	return backend.New(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		GDTURL:  cfg.Backend.GDTURL,
		Timeout: cfg.Backend.Timeout(),

		BreakerThreshold: cfg.Backend.BreakerThreshold,
		BreakerCooldown:  cfg.Backend.BreakerCooldown(),
	})
}

func provideCropper(cfg *config.Config) gdt.Cropper {
	return gdt.NewCropper(cfg.Analyzer.CropWidth, cfg.Analyzer.CropHeight)
}

func provideRegistry(cfg *config.Config) *session.Registry {
	return session.NewRegistry(cfg.Session.IdleTTL())
}

func provideRecorder(client *backend.Client, projector *overlay.Projector) *balloon.Recorder {
	return balloon.NewRecorder(client, projector)
}

func provideAnalyzer(cfg *config.Config, client *backend.Client, cropper gdt.Cropper) *gdt.Analyzer {
	return gdt.NewAnalyzer(client, cropper, cfg.Analyzer.HighlightTTL())
}

func provideClickRouter(recorder *balloon.Recorder, analyzer *gdt.Analyzer) *click.Router {
	return click.NewRouter(recorder, analyzer)
}

func provideServer(cfg *config.Config, handler *api.Handler) (*api.Server, error) {
	return api.NewServer(api.ServerConfig{
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes(),
		Handler:        handler,
	})
}
