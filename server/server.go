// Package server wires the greeting route and the static mounts into an
// http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/en9inerd/geoserve/config"
	"github.com/en9inerd/geoserve/httperrors"
	"github.com/en9inerd/geoserve/middleware"
	"github.com/en9inerd/geoserve/ratelimit"
	"github.com/en9inerd/geoserve/realip"
	"github.com/en9inerd/geoserve/router"
	"github.com/en9inerd/geoserve/static"
)

// Greeting is the body served at "/".
const Greeting = "Hello, world!"

// maxRequestBody bounds request bodies; every route is a GET.
const maxRequestBody = 64 << 10

// Route is one entry of the route table. A Pattern ending in "/" (other than
// "/" itself) matches every path below it with the prefix stripped.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

// Prefix reports whether r matches by prefix rather than exactly.
func (r Route) Prefix() bool {
	return r.Pattern != "/" && strings.HasSuffix(r.Pattern, "/")
}

// Server is the fixed route table plus its listener settings.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	mounts  []*static.FileServer
	routes  []Route
	handler http.Handler
}

// New validates cfg, opens the mounts and builds the handler.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{cfg: cfg, logger: logger}

	s.routes = []Route{{Method: http.MethodGet, Pattern: "/", Handler: http.HandlerFunc(greet)}}
	for _, m := range cfg.Mounts() {
		files, err := static.Open(m.Dir, static.Options{
			Required: cfg.RequireDirs,
			Logger:   logger.With("mount", m.Prefix),
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("mount %s: %w", m.Prefix, err)
		}
		s.mounts = append(s.mounts, files)
		s.routes = append(s.routes, Route{Method: http.MethodGet, Pattern: m.Prefix, Handler: files})
	}

	handler, err := s.buildHandler()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.handler = handler
	return s, nil
}

func (s *Server) buildHandler() (http.Handler, error) {
	res, err := realip.NewResolver(s.cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	var limiter *ratelimit.Keyed
	if s.cfg.RateLimit > 0 {
		limiter = ratelimit.NewKeyed(s.cfg.RateBurst, s.cfg.RateLimit)
	}

	r := router.New(http.NewServeMux())
	r.Use(
		middleware.Recoverer(s.logger, s.logger.Enabled(context.Background(), slog.LevelDebug)),
		middleware.RequestID,
		middleware.RealIP(res),
		middleware.Logger(s.logger),
		middleware.Headers("X-Content-Type-Options: nosniff"),
		middleware.Health(s.cfg.HealthPath),
		middleware.RateLimit(limiter),
		middleware.GlobalThrottle(s.cfg.MaxInFlight),
		middleware.SizeLimit(maxRequestBody),
		middleware.Timeout(s.cfg.RequestTimeout),
	)

	notFound := func(w http.ResponseWriter, r *http.Request) {
		httperrors.NotFound(nil).Write(w)
	}
	r.NotFoundHandler(notFound)
	// the route table only answers GET, every other method is a miss
	r.MethodNotAllowedHandler(notFound)

	for _, rt := range s.routes {
		pattern := rt.Method + " " + rt.Pattern
		if rt.Prefix() {
			r.HandleFiles(pattern, rt.Handler)
			continue
		}
		r.Handle(pattern, rt.Handler)
	}
	return r, nil
}

func greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Greeting))
}

// Routes returns a copy of the route table in registration order.
func (s *Server) Routes() []Route {
	return slices.Clone(s.routes)
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully. It returns nil after a graceful shutdown and an
// error if the listener cannot be bound or the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener, which it closes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases the mount directories.
func (s *Server) Close() error {
	var errs []error
	for _, m := range s.mounts {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}
