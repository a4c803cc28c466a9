// Package server exposes the launch cache over HTTP: cached rows, load
// triggers, the staleness sweep and Prometheus metrics.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viant/launchsync/internal/logger"
	"github.com/viant/launchsync/launch"
	"github.com/viant/launchsync/launchsync"
)

// Handler serves the launch cache endpoints.
type Handler struct {
	Coordinator *launchsync.Coordinator
	Store       launch.LaunchStore
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
	// Now is the sweep clock; time.Now when nil.
	Now func() time.Time
}

// NewRouter creates the chi router.
//
// Routes:
//   - GET /healthz
//   - GET /metrics
//   - GET /launches/{partition}?limit=&offset=
//   - POST /launches/{partition}/load?direction=
//   - POST /sweep
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	gatherer := h.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/launches/{partition}", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/load", h.load)
	})
	r.Post("/sweep", h.sweep)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		args := []any{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			logger.KeyDuration, time.Since(start).String(),
		}
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			logger.Debug("request completed", args...)
			return
		}
		logger.Info("request completed", args...)
	})
}
