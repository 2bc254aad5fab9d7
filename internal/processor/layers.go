package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoindex/internal/config"
	"github.com/woozymasta/geoindex/internal/geo"
)

// DefaultConcurrency bounds parallel layer fetches.
const DefaultConcurrency = 4

// LayerData is the result of loading one configured layer.
type LayerData struct {
	Collection *geojson.FeatureCollection
	Err        error
	Layer      config.Layer
}

// Build loads all configured layers and indexes them in config order.
// Layers that fail to load are reported in the joined error; the returned
// catalog holds every layer that loaded successfully.
func Build(ctx context.Context, client *http.Client, cfg *config.Config, concurrency int) (*Catalog, error) {
	catalog := NewCatalog(cfg.Index.MaxEntries, cfg.Index.MinEntries)

	var errs []error
	for _, data := range LoadLayers(ctx, client, cfg.Layers, concurrency) {
		if data.Err != nil {
			log.Error().Err(data.Err).Str("layer", data.Layer.Name).Msg("Failed to load layer")
			errs = append(errs, fmt.Errorf("layer %q: %w", data.Layer.Name, data.Err))
			continue
		}

		if _, err := catalog.AddLayer(data.Layer.Name, data.Layer.KeyProperty, data.Collection); err != nil {
			errs = append(errs, err)
		}
	}

	stats := catalog.Stats()
	log.Info().
		Int("layers", stats.Layers).
		Int("features", stats.Features).
		Int("height", stats.Height).
		Msg("Catalog built")

	return catalog, errors.Join(errs...)
}

// LoadLayers fetches and parses layers in parallel. Results keep the
// order of layers.
func LoadLayers(ctx context.Context, client *http.Client, layers []config.Layer, concurrency int) []LayerData {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]LayerData, len(layers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, l := range layers {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, l config.Layer) {
			defer wg.Done()
			defer func() { <-sem }()

			fc, err := LoadLayer(ctx, client, l)
			results[i] = LayerData{Layer: l, Collection: fc, Err: err}
		}(i, l)
	}
	wg.Wait()

	return results
}

// LoadLayer reads a layer source from disk or over HTTP and parses it as GeoJSON.
func LoadLayer(ctx context.Context, client *http.Client, l config.Layer) (*geojson.FeatureCollection, error) {
	data, err := readSource(ctx, client, l)
	if err != nil {
		return nil, err
	}

	fc, err := geo.ParseFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("layer", l.Name).
		Str("source", l.Source).
		Int("features", len(fc.Features)).
		Msg("Layer source parsed")

	return fc, nil
}

func readSource(ctx context.Context, client *http.Client, l config.Layer) ([]byte, error) {
	if !l.IsRemote() {
		return os.ReadFile(l.Source)
	}

	if client == nil {
		client = http.DefaultClient
	}

	log.Info().Str("layer", l.Name).Str("url", l.Source).Msg("Downloading layer")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
