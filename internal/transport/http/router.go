// Package http assembles the engine's HTTP surface: platform middleware,
// module handlers, and the operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gazettehandler "gazette/internal/gazette/handler"
	"gazette/internal/platform/middleware"
	processinghandler "gazette/internal/processing/handler"
	"gazette/pkg/platform/httputil"
)

// Registrar is any module handler that mounts routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries the wired module handlers.
type Deps struct {
	Gazette    *gazettehandler.Handler
	Processing *processinghandler.Handler
	Logger     *slog.Logger
	// Health probes run on /healthz; nil entries are skipped.
	Health []func() error
}

// NewRouter builds the full route tree with the platform middleware stack.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Gazette.Register(r)
		deps.Processing.Register(r)
	})

	return r
}

func handleHealth(probes []func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if probe == nil {
				continue
			}
			if err := probe(); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
