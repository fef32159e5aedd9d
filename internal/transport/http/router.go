package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credvault/internal/platform/health"
	"credvault/pkg/platform/middleware/auth"
	"credvault/pkg/platform/middleware/request"
	"credvault/pkg/platform/validation"
)

const defaultRequestTimeout = 30 * time.Second

// RouteRegistrar mounts a module's authenticated routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// PublicRegistrar mounts routes reachable without a bearer token.
type PublicRegistrar interface {
	RegisterPublic(r chi.Router)
}

// Config lists everything the router mounts. Protected registrars are served
// behind RequireAuth; each one applies its own role checks.
type Config struct {
	Logger         *slog.Logger
	Validator      auth.JWTValidator
	Metrics        *request.Metrics
	Health         *health.Handler
	Public         []PublicRegistrar
	Protected      []RouteRegistrar
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter builds the HTTP surface with the shared middleware chain.
func NewRouter(cfg Config) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = validation.MaxBodySize
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Latency(cfg.Metrics, routePattern))
	r.Use(request.Timeout(timeout))
	r.Use(request.BodyLimit(maxBody))
	r.Use(request.ContentTypeJSON)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	for _, reg := range cfg.Public {
		reg.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Validator, cfg.Logger))
		for _, reg := range cfg.Protected {
			reg.Register(r)
		}
	})

	return r
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
