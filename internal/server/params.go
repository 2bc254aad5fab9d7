package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/woozymasta/geoindex/pkg/rtree"
)

const maxBodySize = 1 << 16

// parseFloats splits a comma separated list into exactly n finite numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %q", n, s)
	}

	out := make([]float64, n)
	for i, p := range parts {
		v, err := parseCoord(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("number %q is not finite", s)
	}
	return v, nil
}

// parseBBox reads minLat,minLon,maxLat,maxLon.
func parseBBox(s string) (rtree.GeoRect, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return rtree.GeoRect{}, fmt.Errorf("bbox: %w", err)
	}

	r := rtree.Rect(v[0], v[1], v[2], v[3])
	if r.MinLat > r.MaxLat || r.MinLon > r.MaxLon {
		return rtree.GeoRect{}, errors.New("bbox: min bound exceeds max bound")
	}

	return r, nil
}

// parsePoint reads lat,lon.
func parsePoint(name, s string) (lat, lon float64, err error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", name, err)
	}
	return v[0], v[1], nil
}

// parseLatLon reads separate lat and lon query parameters.
func parseLatLon(q url.Values) (lat, lon float64, err error) {
	if lat, err = parseCoord(q.Get("lat")); err != nil {
		return 0, 0, fmt.Errorf("lat: %w", err)
	}
	if lon, err = parseCoord(q.Get("lon")); err != nil {
		return 0, 0, fmt.Errorf("lon: %w", err)
	}
	return lat, lon, nil
}

func parseKey(s string) (int, error) {
	key, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid feature key %q", s)
	}
	return key, nil
}

type rectBody struct {
	MinLat *float64 `json:"min_lat"`
	MinLon *float64 `json:"min_lon"`
	MaxLat *float64 `json:"max_lat"`
	MaxLon *float64 `json:"max_lon"`
}

// decodeRect reads a JSON rectangle with all four bounds present.
func decodeRect(body io.Reader) (rtree.GeoRect, error) {
	var b rectBody

	dec := json.NewDecoder(io.LimitReader(body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return rtree.GeoRect{}, fmt.Errorf("decode rect: %w", err)
	}

	if b.MinLat == nil || b.MinLon == nil || b.MaxLat == nil || b.MaxLon == nil {
		return rtree.GeoRect{}, errors.New("rect requires min_lat, min_lon, max_lat and max_lon")
	}

	return rtree.Rect(*b.MinLat, *b.MinLon, *b.MaxLat, *b.MaxLon), nil
}
