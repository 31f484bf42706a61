package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongminglow/credit-approval/internal/auth"
	"github.com/hongminglow/credit-approval/internal/config"
	"github.com/hongminglow/credit-approval/internal/http/handlers"
	"github.com/hongminglow/credit-approval/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Deps are the collaborators served over HTTP.
type Deps struct {
	Lending  handlers.LendingService
	Storage  handlers.Pinger
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// New wires up middleware, routes, and returns a ready server. Lending
// routes require a bearer token when a JWT secret is configured; /health and
// /metrics never do.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Routes builds the full handler chain.
func Routes(cfg config.Config, deps Deps) http.Handler {
	api := http.NewServeMux()
	handlers.NewLendingHandler(deps.Lending, deps.Logger).Register(api)

	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled() {
		verifier = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.Storage).Register(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", middleware.Auth(verifier, api))

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(deps.Logger, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
