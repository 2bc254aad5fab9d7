// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoindex/internal/processor"
)

// HandleLayers serves the loaded layers with their feature counts.
func (s *ServerContext) HandleLayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Layers())
}

// HandleStats serves index size, height, bounds and capacities.
func (s *ServerContext) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Stats())
}

// HandleSearch serves features intersecting ?bbox=minLat,minLon,maxLat,maxLon.
func (s *ServerContext) HandleSearch(w http.ResponseWriter, r *http.Request) {
	rect, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeFeatures(w, s.Catalog.Search(rect))
}

// HandleLine serves candidates for the segment ?from=lat,lon&to=lat,lon.
func (s *ServerContext) HandleLine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat1, lon1, err := parsePoint("from", q.Get("from"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lat2, lon2, err := parsePoint("to", q.Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeFeatures(w, s.Catalog.Line(lat1, lon1, lat2, lon2))
}

// HandleNearest serves the feature closest to ?lat=..&lon=..
func (s *ServerContext) HandleNearest(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseLatLon(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := s.Catalog.Nearest(lat, lon)
	if err != nil {
		writeError(w, err)
		return
	}

	writeGeoJSON(w, f.GeoJSON())
}

// HandleFeature serves a single feature by key.
func (s *ServerContext) HandleFeature(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r.PathValue("key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, ok := s.Catalog.Get(key)
	if !ok {
		http.Error(w, processor.ErrUnknownKey.Error(), http.StatusNotFound)
		return
	}

	writeGeoJSON(w, f.GeoJSON())
}

// HandleUpdate moves a feature to the rectangle given in the request body.
func (s *ServerContext) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r.PathValue("key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rect, err := decodeRect(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Catalog.Update(key, rect); err != nil {
		writeError(w, err)
		return
	}

	log.Info().Int("key", key).Msg("Feature rectangle updated")

	f, ok := s.Catalog.Get(key)
	if !ok {
		http.Error(w, processor.ErrUnknownKey.Error(), http.StatusNotFound)
		return
	}
	writeGeoJSON(w, f.GeoJSON())
}

// HandleDelete removes a feature from the index.
func (s *ServerContext) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r.PathValue("key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Catalog.Delete(key); err != nil {
		writeError(w, err)
		return
	}

	log.Info().Int("key", key).Msg("Feature deleted")
	w.WriteHeader(http.StatusNoContent)
}

func writeFeatures(w http.ResponseWriter, features []*processor.Feature) {
	writeGeoJSON(w, processor.FeatureCollection(features))
}

func writeGeoJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/geo+json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps catalog errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, processor.ErrUnknownKey), errors.Is(err, processor.ErrEmptyIndex):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, processor.ErrInvalidRect):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Request failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
