// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/alchemorsel/recipefinder/internal/infrastructure/config"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/recipefinder/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const maxRequestBody = 64 << 10

// Server represents the JSON API HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	recipes *handlers.RecipeHandlers
	health  *healthcheck.HealthCheck
	metrics *monitoring.MetricsCollector
}

// NewServer creates a new API server instance
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	recipes *handlers.RecipeHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  log,
		recipes: recipes,
		health:  health,
		metrics: metrics,
	}

	s.router = s.setupRoutes()

	var handler http.Handler = otelhttp.NewHandler(s.router, cfg.App.Name,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	if cfg.Server.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout})
	}

	s.server = &http.Server{
		Addr:           cfg.Address(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       zap.NewStdLog(log.Named("http")),
	}

	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger.Named("access")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS())
	}
	if s.config.Monitoring.EnableMetrics {
		r.Use(s.metrics.HTTPMiddleware)
	}
	if s.config.Server.EnableCompression {
		r.Use(newCompressor().Handler)
	}

	r.Get(s.config.Monitoring.HealthCheckPath, s.health.LivenessHandler())
	r.Get(s.config.Monitoring.ReadinessPath, s.health.ReadinessHandler())
	if s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.NoCache)
		r.Use(middleware.MaxBodySize(maxRequestBody))
		r.Post("/get_recipe", s.recipes.GetRecipe)
	})

	return r
}

// newCompressor returns a gzip/deflate compressor that also speaks brotli
func newCompressor() *chimiddleware.Compressor {
	compressor := chimiddleware.NewCompressor(5, "application/json", "text/plain")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return compressor
}

// Handler returns the root handler, including h2c and tracing wrappers
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve accepts connections on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting API server",
		zap.String("address", ln.Addr().String()),
		zap.Bool("h2c", s.config.Server.EnableH2C),
	)

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
