package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoindex/internal/metrics"
	"github.com/woozymasta/geoindex/internal/processor"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Catalog *processor.Catalog
}

// NewServerContext wraps a built catalog for serving.
func NewServerContext(catalog *processor.Catalog) *ServerContext {
	stats := catalog.Stats()
	log.Info().
		Int("layers", stats.Layers).
		Int("features", stats.Features).
		Msg("Server context initialized successfully")

	return &ServerContext{Catalog: catalog}
}

// Routes registers all API handlers and the metrics endpoint.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/layers", s.HandleLayers)
	mux.HandleFunc("GET /api/stats", s.HandleStats)
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/line", s.HandleLine)
	mux.HandleFunc("GET /api/nearest", s.HandleNearest)
	mux.HandleFunc("GET /api/features/{key}", s.HandleFeature)
	mux.HandleFunc("PUT /api/features/{key}", s.HandleUpdate)
	mux.HandleFunc("DELETE /api/features/{key}", s.HandleDelete)
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
