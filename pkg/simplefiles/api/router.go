package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes bounds creation payloads, which carry base64 content.
const DefaultMaxBodyBytes = 32 << 20

// RouterOptions configures NewRouter
type RouterOptions struct {
	Logger         *slog.Logger
	Metrics        MetricsCollector // optional
	MetricsHandler http.Handler     // served at /metrics when set
	MaxBodyBytes   int64
}

// NewRouter mounts the files API, health and metrics endpoints behind the
// standard middleware stack.
func NewRouter(files *FilesHandler, opts RouterOptions) chi.Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(RecoveryMiddleware(opts.Logger))
	if opts.Metrics != nil {
		r.Use(MetricsMiddleware(opts.Metrics))
	}

	r.Get("/health", Health)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequestSizeLimitMiddleware(opts.MaxBodyBytes))
		r.Mount("/files", files.Routes())
	})

	return r
}
