// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package web serves the operation table over HTTP with gin.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/observability"
	"github.com/postline/postline/internal/session"
)

// HTTP server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

// Config configures the HTTP transport.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	CookieName      string
	AllowedOrigins  []string
}

// Server is the Postline HTTP API.
type Server struct {
	cfg        Config
	engine     *gin.Engine
	dispatcher *api.Dispatcher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records per-request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer builds the router. Sessions are resolved through store on the
// operation endpoint only.
func NewServer(cfg Config, dispatcher *api.Dispatcher, store *session.CookieStore, opts ...Option) (*Server, error) {
	if dispatcher == nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("dispatcher is required")
	}
	if store == nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("session store is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = session.DefaultCookieName
	}

	s := &Server{cfg: cfg, dispatcher: dispatcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	corsHandler, err := newCORS(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(
		recovery(s.logger),
		requestID(),
		accessLog(s.logger, s.metrics),
		corsHandler,
	)

	engine.GET("/", s.handleRoot)
	engine.GET("/api", s.handleSchema)

	chain := session.Middleware(cfg.CookieName, store, s.sessionFailed)
	engine.POST("/api/:operation", append(chain, s.handleOperation)...)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": api.ErrorBody{Code: "NOT_FOUND", Message: "not found"}})
	})

	s.engine = engine
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return oops.Code("WEB_LISTEN_FAILED").With("addr", s.cfg.Addr).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.InfoContext(ctx, "http server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return oops.Code("WEB_SERVE_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close() //nolint:errcheck // shutdown error takes precedence
		return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
	}
	<-errCh
	s.logger.InfoContext(ctx, "http server stopped")
	return nil
}
