package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// ParseFeatureCollection decodes a GeoJSON FeatureCollection or a single Feature.
// A single feature is returned wrapped in a collection.
func ParseFeatureCollection(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	switch strings.ToLower(head.Type) {
	case "featurecollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		return fc, nil

	case "feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	}

	return nil, fmt.Errorf("unsupported geojson type %q", head.Type)
}

// FeatureKey reads an integer key from the named property, or from the
// feature id when property is empty. Numbers must be integral and fit in an
// int; strings must parse as base 10 integers.
func FeatureKey(f *geojson.Feature, property string) (int, bool) {
	if f == nil {
		return 0, false
	}

	var v any = f.ID
	if property != "" {
		v = f.Properties[property]
	}

	switch x := v.(type) {
	case float64:
		// float64(math.MaxInt) rounds up to 2^63 on 64-bit platforms
		if x != math.Trunc(x) || x >= float64(math.MaxInt) || x < float64(math.MinInt) {
			return 0, false
		}
		return int(x), true
	case int:
		return x, true
	case int64:
		if x > math.MaxInt || x < math.MinInt {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := strconv.Atoi(x.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(x)
		return n, err == nil
	}

	return 0, false
}
