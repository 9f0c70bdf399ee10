// Package server exposes the configuration store, state derivation and
// document rendering over HTTP, plus a websocket for live form sessions.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/internal/metrics"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/storage"
)

// FormPath is where the HTML form posts back to.
const FormPath = "/form"

// Option configures a Server.
type Option func(*Server)

// WithLogger routes request and session logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTheme applies theme tokens to every HTML render.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithMetrics mounts the Prometheus handler at path. An empty path disables it.
func WithMetrics(path string) Option {
	return func(s *Server) {
		s.metricsPath = path
	}
}

// WithTimeouts sets the http.Server read/write timeouts and the graceful
// shutdown budget used by Run.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// WithAssets serves files under /assets/. Defaults to the HTML renderer's
// stylesheet bundle.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// Server wires the HTTP routes over a storage manager and renderer registry.
type Server struct {
	manager  *storage.Manager
	registry *render.Registry
	logger   *zap.Logger
	theme    *theme.RendererConfig
	assets   fs.FS
	sessions *hub

	metricsPath     string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	router chi.Router
}

// New builds the server. The registry must provide the renderers requested
// by clients; "html" backs /form and "json" is the /api/render default.
func New(manager *storage.Manager, registry *render.Registry, opts ...Option) (*Server, error) {
	if manager == nil {
		return nil, errors.New("server: storage manager is required")
	}
	if registry == nil {
		return nil, errors.New("server: renderer registry is required")
	}
	s := &Server{
		manager:         manager,
		registry:        registry,
		logger:          zap.NewNop(),
		assets:          html.AssetsFS(),
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.sessions = newHub(s.logger)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.getConfig)
		r.Put("/config", s.putConfig)
		r.Delete("/config", s.deleteConfig)
		r.Get("/config/normalized", s.getNormalized)

		r.Post("/state", s.postState)
		r.Post("/render", s.postRender)
		r.Post("/validate", s.postValidate)
		r.Get("/schema", s.getSchema)
		r.Get("/lint", s.getLint)
	})

	r.Get(FormPath, s.getForm)
	r.Post(FormPath, s.postForm)
	r.Get("/ws", s.serveWS)

	if s.assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(s.assets))))
	}
	if s.metricsPath != "" {
		r.Handle(s.metricsPath, metrics.Handler())
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// closes live sessions.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs error
	s.sessions.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("server: shutdown: %w", err))
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = multierr.Append(errs, err)
	}
	s.logger.Info("server stopped")
	return errs
}
