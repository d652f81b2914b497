package app

import (
	"context"
	"fmt"

	"ballooner/internal/config"
	"ballooner/internal/gateway/backend"
	"ballooner/internal/logger"
	"ballooner/internal/session"
	"ballooner/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App owns the assembled service: HTTP server, session registry and the
// backend client shared by every session.
type App struct {
	cfg      *config.Config
	server   *api.Server
	sessions *session.Registry
	backend  *backend.Client
	Summary  *StartupSummary
}

// NewApp assembles the service from cfg without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(cfg)
}

func newApp(cfg *config.Config, server *api.Server, sessions *session.Registry, client *backend.Client) *App {
	return &App{
		cfg:      cfg,
		server:   server,
		sessions: sessions,
		backend:  client,
		Summary:  NewStartupSummary(cfg),
	}
}

// Watch applies backend and logging changes from config reloads.
func (a *App) Watch(w *config.Watcher) {
	if a == nil || w == nil {
		return
	}
	w.Subscribe(func(cfg *config.Config) {
		a.backend.SetEndpoints(cfg.Backend.BaseURL, cfg.Backend.GDTURL)
		logger.SetLevel(cfg.App.LogLevel)
		logger.Infof("backend endpoints now base=%s gdt=%s", cfg.Backend.BaseURL, cfg.Backend.GDTBase())
	})
}

// Run serves HTTP and evicts idle sessions until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.sessions.RunJanitor(ctx, a.cfg.Session.JanitorInterval())
	})
	return group.Wait()
}

// Sessions exposes the registry (for tests and embedding).
func (a *App) Sessions() *session.Registry {
	if a == nil {
		return nil
	}
	return a.sessions
}

// Server exposes the HTTP server.
func (a *App) Server() *api.Server {
	if a == nil {
		return nil
	}
	return a.server
}
