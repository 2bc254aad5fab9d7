package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoindex/internal/config"
	"github.com/woozymasta/geoindex/pkg/rtree"
)

const layerJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"id": 5}, "geometry": {"type": "Point", "coordinates": [10, 20]}},
    {"type": "Feature", "properties": {"id": 6}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [2, 3]]}}
  ]
}`

func newLayerServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/layer.geojson", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [-50, -40]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestLoadLayerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.geojson")
	require.NoError(t, os.WriteFile(path, []byte(layerJSON), 0o644))

	fc, err := LoadLayer(context.Background(), nil, config.Layer{Name: "points", Source: path})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)
}

func TestLoadLayerHTTP(t *testing.T) {
	srv := newLayerServer(t)

	fc, err := LoadLayer(context.Background(), srv.Client(), config.Layer{Name: "remote", Source: srv.URL + "/layer.geojson"})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	_, err = LoadLayer(context.Background(), srv.Client(), config.Layer{Name: "missing", Source: srv.URL + "/missing"})
	assert.ErrorContains(t, err, "download failed: 404")
}

func TestLoadLayersKeepsOrder(t *testing.T) {
	srv := newLayerServer(t)
	dir := t.TempDir()

	layers := make([]config.Layer, 0, 6)
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, "layer"+string(rune('a'+i))+".geojson")
		require.NoError(t, os.WriteFile(path, []byte(layerJSON), 0o644))
		layers = append(layers,
			config.Layer{Name: "file" + string(rune('a'+i)), Source: path},
			config.Layer{Name: "http" + string(rune('a'+i)), Source: srv.URL + "/layer.geojson"},
		)
	}

	results := LoadLayers(context.Background(), srv.Client(), layers, 2)
	require.Len(t, results, len(layers))
	for i, r := range results {
		assert.Equal(t, layers[i].Name, r.Layer.Name)
		assert.NoError(t, r.Err)
	}
}

func TestBuild(t *testing.T) {
	srv := newLayerServer(t)
	path := filepath.Join(t.TempDir(), "points.geojson")
	require.NoError(t, os.WriteFile(path, []byte(layerJSON), 0o644))

	cfg := &config.Config{
		Index: config.Index{MaxEntries: 4, MinEntries: 2},
		Layers: []config.Layer{
			{Name: "points", Source: path, KeyProperty: "id"},
			{Name: "broken", Source: filepath.Join(t.TempDir(), "nope.geojson")},
			{Name: "remote", Source: srv.URL + "/layer.geojson"},
		},
	}

	catalog, err := Build(context.Background(), srv.Client(), cfg, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `layer "broken"`)
	require.NotNil(t, catalog)

	layers := catalog.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, "points", layers[0].Name)
	assert.Equal(t, "remote", layers[1].Name)

	assert.Equal(t, []int{5}, keys(catalog.Search(rtree.Rect(20, 10, 20, 10))))
	assert.Equal(t, []int{6}, keys(catalog.Search(rtree.Rect(1, 1, 1, 1))))
	assert.Equal(t, []int{7}, keys(catalog.Search(rtree.Rect(-40, -50, -40, -50))))
}
