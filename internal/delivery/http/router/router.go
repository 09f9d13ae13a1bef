package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/delivery/http/handler"
	"github.com/user/memorial-extractor/internal/delivery/http/middleware"
	"github.com/user/memorial-extractor/pkg/metrics"
)

// New wires the API routes. Extraction fetches a remote page, so the
// request timeout is wider than the loader's own deadline.
func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	r.Handle("/metrics", promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/columns", h.HandleColumns)
		r.Post("/extract", h.HandleExtract)
		r.Get("/records", h.HandleGetRecord)
	})

	return r
}
