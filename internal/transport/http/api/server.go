package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ballooner/internal/logger"

	"github.com/gin-gonic/gin"
)

// Server exposes the session API over HTTP.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig describes the HTTP server's dependencies.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	MaxUploadBytes int64
	Handler        *Handler
}

// NewServer builds the gin engine and mounts every route.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("api server requires a handler")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	router, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{addr: cfg.Addr, router: router}, nil
}

// NewEngine returns the configured gin engine without binding a listener.
func NewEngine(cfg ServerConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.AllowedOrigins))
	if err := loadTemplates(router); err != nil {
		return nil, err
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "The ballooner server is running. Create a session via POST /api/sessions.")
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/sessions/:id", cfg.Handler.handleSessionPage)
	cfg.Handler.Register(router.Group("/api"))
	return router, nil
}

// requestLogger logs every request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, c.Writer.Status(), client, time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("http server listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
