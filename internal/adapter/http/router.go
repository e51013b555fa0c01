package http

import (
	"net/http"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// RouterOptions configures the ambient middleware around the catalog routes.
type RouterOptions struct {
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string
	// Metrics, when set, is served at /metrics.
	Metrics prometheus.Gatherer
}

// NewRouter builds the HTTP handler for the catalog API.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Logging())
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	compressor, err := httpcompression.DefaultAdapter(
		httpcompression.MinSize(1024),
		httpcompression.GzipCompressionLevel(2),
		httpcompression.Prefer(httpcompression.PreferServer),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create HTTP compression adapter")
	} else {
		r.Use(compressor)
	}

	corsOpts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "X-Cache"},
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) > 0 {
		corsOpts.AllowedOrigins = opts.AllowedOrigins
	} else {
		corsOpts.AllowOriginFunc = func(string) bool { return true }
	}
	r.Use(cors.New(corsOpts).Handler)

	h.Routes(r)

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	return r
}
