// Package processor loads feature layers and serves them through a spatial index.
package processor

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoindex/internal/geo"
	"github.com/woozymasta/geoindex/internal/metrics"
	"github.com/woozymasta/geoindex/pkg/rtree"
)

var (
	// ErrUnknownKey is returned when no feature is indexed under a key.
	ErrUnknownKey = errors.New("unknown feature key")
	// ErrEmptyIndex is returned by Nearest when nothing is indexed.
	ErrEmptyIndex = errors.New("index is empty")
	// ErrInvalidRect is returned when an update rectangle is not well formed.
	ErrInvalidRect = errors.New("invalid rectangle")
	// ErrDuplicateLayer is returned when a layer name is added twice.
	ErrDuplicateLayer = errors.New("layer already loaded")
)

// BoundsFunc computes the indexed rectangle of a feature.
type BoundsFunc func(*geojson.Feature) rtree.GeoRect

// Feature is an indexed GeoJSON feature. Features handed out by the catalog
// are never modified afterwards; Update stores a new Feature instead.
type Feature struct {
	Feature *geojson.Feature
	Layer   string
	Rect    rtree.GeoRect
	Key     int
}

// LayerInfo describes a loaded layer.
type LayerInfo struct {
	Name     string `json:"name" yaml:"name"`
	Features int    `json:"features" yaml:"features"`
	Skipped  int    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Stats summarizes the index state.
type Stats struct {
	Bounds     *rtree.GeoRect `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Features   int            `json:"features" yaml:"features"`
	Height     int            `json:"height" yaml:"height"`
	MaxEntries int            `json:"max_entries" yaml:"max_entries"`
	MinEntries int            `json:"min_entries" yaml:"min_entries"`
	Layers     int            `json:"layers" yaml:"layers"`
}

// Catalog owns the spatial index and the features it refers to.
// All methods are safe for concurrent use.
type Catalog struct {
	index    *rtree.Index
	features map[int]*Feature
	layers   map[string]*LayerInfo
	bounds   BoundsFunc
	order    []string
	nextKey  int
	mu       sync.RWMutex
}

// NewCatalog creates an empty catalog with the given index capacities.
func NewCatalog(maxEntries, minEntries int) *Catalog {
	return &Catalog{
		index:    rtree.New(maxEntries, minEntries),
		features: make(map[int]*Feature),
		layers:   make(map[string]*LayerInfo),
		bounds:   geo.BoundsOfFeature,
		nextKey:  1,
	}
}

// SetBounds replaces the feature rectangle extractor used by AddLayer.
func (c *Catalog) SetBounds(fn BoundsFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bounds = fn
}

// AddLayer indexes every feature of fc under the layer name.
// Keys are read from keyProperty when set, otherwise assigned sequentially
// starting at 1. Features without a valid rectangle or with a key already
// in use are skipped. It returns the number of indexed features.
func (c *Catalog) AddLayer(name, keyProperty string, fc *geojson.FeatureCollection) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.layers[name]; ok {
		return 0, fmt.Errorf("layer %q: %w", name, ErrDuplicateLayer)
	}

	info := &LayerInfo{Name: name}
	c.layers[name] = info
	c.order = append(c.order, name)

	if fc == nil {
		return 0, nil
	}

	for i, f := range fc.Features {
		rect := c.bounds(f)
		if !rect.IsValid() {
			info.Skipped++
			log.Debug().Str("layer", name).Int("feature", i).Msg("Feature skipped: no geometry")
			continue
		}

		key, ok := 0, false
		if keyProperty != "" {
			key, ok = geo.FeatureKey(f, keyProperty)
			if !ok {
				log.Debug().
					Str("layer", name).
					Int("feature", i).
					Str("property", keyProperty).
					Msg("Key property missing, assigning sequential key")
			}
		}
		if !ok {
			key = c.allocKey()
		}

		if _, exists := c.features[key]; exists {
			info.Skipped++
			log.Warn().Str("layer", name).Int("key", key).Msg("Feature skipped: duplicate key")
			continue
		}
		if key >= c.nextKey && key < math.MaxInt {
			c.nextKey = key + 1
		}

		c.features[key] = &Feature{Key: key, Layer: name, Rect: rect, Feature: f}
		c.index.Insert(key, rect)
		info.Features++
	}

	metrics.IndexedFeatures.Set(float64(len(c.features)))

	log.Info().
		Str("layer", name).
		Int("features", info.Features).
		Int("skipped", info.Skipped).
		Msg("Layer indexed")

	return info.Features, nil
}

func (c *Catalog) allocKey() int {
	for {
		key := c.nextKey
		c.nextKey++
		if _, used := c.features[key]; !used {
			return key
		}
	}
}

// Search returns features whose rectangles intersect q, ordered by key.
func (c *Catalog) Search(q rtree.GeoRect) []*Feature {
	defer metrics.ObserveQuery("search", time.Now())

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.resolve(c.index.Search(q))
}

// Line returns candidates whose rectangles intersect the bounding box of
// the segment between two points, ordered by key.
func (c *Catalog) Line(lat1, lon1, lat2, lon2 float64) []*Feature {
	defer metrics.ObserveQuery("line", time.Now())

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.resolve(c.index.SearchLineIntersection(lat1, lon1, lat2, lon2))
}

// Nearest returns the feature whose rectangle is closest to the point.
func (c *Catalog) Nearest(lat, lon float64) (*Feature, error) {
	defer metrics.ObserveQuery("nearest", time.Now())

	c.mu.RLock()
	defer c.mu.RUnlock()

	key, ok := c.index.FindNearestOK(lat, lon)
	if !ok {
		return nil, ErrEmptyIndex
	}

	f, ok := c.features[key]
	if !ok {
		return nil, fmt.Errorf("key %d: %w", key, ErrUnknownKey)
	}

	return f, nil
}

// Get returns the feature stored under key.
func (c *Catalog) Get(key int) (*Feature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.features[key]
	return f, ok
}

// Update moves the feature stored under key to a new rectangle.
func (c *Catalog) Update(key int, rect rtree.GeoRect) error {
	if !rect.IsValid() || rect.MinLat > rect.MaxLat || rect.MinLon > rect.MaxLon {
		return ErrInvalidRect
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.features[key]
	if !ok || !c.index.Update(key, rect) {
		metrics.ObserveMutation("update", false)
		return fmt.Errorf("key %d: %w", key, ErrUnknownKey)
	}

	moved := *f
	moved.Rect = rect
	c.features[key] = &moved
	metrics.ObserveMutation("update", true)
	log.Debug().Int("key", key).Str("layer", f.Layer).Msg("Feature updated")

	return nil
}

// Delete removes the feature stored under key.
func (c *Catalog) Delete(key int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.features[key]
	if !ok || !c.index.Delete(key) {
		metrics.ObserveMutation("delete", false)
		return fmt.Errorf("key %d: %w", key, ErrUnknownKey)
	}

	delete(c.features, key)
	if info, ok := c.layers[f.Layer]; ok {
		info.Features--
	}

	metrics.ObserveMutation("delete", true)
	metrics.IndexedFeatures.Set(float64(len(c.features)))
	log.Debug().Int("key", key).Str("layer", f.Layer).Msg("Feature deleted")

	return nil
}

// Layers returns the loaded layers in load order.
func (c *Catalog) Layers() []LayerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]LayerInfo, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.layers[name])
	}
	return out
}

// Stats reports the index size, shape and capacities.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Features:   c.index.Len(),
		Height:     c.index.Height(),
		MaxEntries: c.index.MaxEntries(),
		MinEntries: c.index.MinEntries(),
		Layers:     len(c.order),
	}
	if b := c.index.Bounds(); b.IsValid() {
		s.Bounds = &b
	}

	return s
}

// resolve maps index keys to features; the caller holds the lock.
func (c *Catalog) resolve(keys []int) []*Feature {
	sort.Ints(keys)

	out := make([]*Feature, 0, len(keys))
	for _, k := range keys {
		if f, ok := c.features[k]; ok {
			out = append(out, f)
		}
	}
	return out
}

// FeatureCollection wraps features into a GeoJSON collection. Each feature
// carries its key, layer and indexed bounding box.
func FeatureCollection(features []*Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f.GeoJSON())
	}
	return fc
}

// GeoJSON returns a copy of the source feature annotated with its key,
// layer and indexed bounding box.
func (f *Feature) GeoJSON() *geojson.Feature {
	out := geojson.NewFeature(f.Feature.Geometry)
	out.ID = f.Key
	out.BBox = geojson.BBox{f.Rect.MinLon, f.Rect.MinLat, f.Rect.MaxLon, f.Rect.MaxLat}
	for k, v := range f.Feature.Properties {
		out.Properties[k] = v
	}
	out.Properties["layer"] = f.Layer

	return out
}
