package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"pitstop-service/internal/api/handlers"
	"pitstop-service/internal/ports"
)

type Options struct {
	AllowedOrigins []string
	MetricsEnabled bool
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of the concrete store.
func NewRouter(store ports.RestroomStore, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	restrooms := &handlers.RestroomHandler{Store: store}
	health := &handlers.HealthHandler{Store: store}

	r.Get("/", handlers.Root)
	r.Get("/health", health.Health)
	if opts.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/restrooms", restrooms.List)
		r.Get("/restrooms.geojson", restrooms.GeoJSON)
	})

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	})

	return c.Handler(r)
}
