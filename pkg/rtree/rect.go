package rtree

import "math"

// EarthRadiusKm is the spherical Earth radius used by GeoRect.Area.
const EarthRadiusKm = 6371.0

// GeoRect is an axis-aligned bounding rectangle in latitude/longitude space.
//
// A zero-initialized GeoRect is a valid degenerate rectangle at (0, 0);
// use NewGeoRect to obtain an empty rectangle that can be grown with Expand.
type GeoRect struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// NewGeoRect returns an invalid rectangle that becomes valid after the first Expand.
func NewGeoRect() GeoRect {
	return GeoRect{
		MinLat: math.MaxFloat64,
		MinLon: math.MaxFloat64,
		MaxLat: -math.MaxFloat64,
		MaxLon: -math.MaxFloat64,
	}
}

// Rect builds a rectangle from explicit bounds. No ordering is enforced.
func Rect(minLat, minLon, maxLat, maxLon float64) GeoRect {
	return GeoRect{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}

// LineRect returns the minimal rectangle covering the segment between two points.
func LineRect(lat1, lon1, lat2, lon2 float64) GeoRect {
	r := NewGeoRect()
	r.ExpandPoint(lat1, lon1)
	r.ExpandPoint(lat2, lon2)
	return r
}

// WorldRect spans the whole representable coordinate domain.
func WorldRect() GeoRect {
	return Rect(-math.MaxFloat64, -math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
}

// ExpandPoint widens the rectangle to include the given point.
func (r *GeoRect) ExpandPoint(lat, lon float64) {
	r.MinLat = minf(r.MinLat, lat)
	r.MinLon = minf(r.MinLon, lon)
	r.MaxLat = maxf(r.MaxLat, lat)
	r.MaxLon = maxf(r.MaxLon, lon)
}

// Expand widens the rectangle to include other. Invalid rectangles are ignored.
func (r *GeoRect) Expand(other GeoRect) {
	if !other.IsValid() {
		return
	}
	r.MinLat = minf(r.MinLat, other.MinLat)
	r.MinLon = minf(r.MinLon, other.MinLon)
	r.MaxLat = maxf(r.MaxLat, other.MaxLat)
	r.MaxLon = maxf(r.MaxLon, other.MaxLon)
}

// Union returns the smallest rectangle covering both r and other.
func (r GeoRect) Union(other GeoRect) GeoRect {
	r.Expand(other)
	return r
}

// Intersects reports whether the rectangles overlap. Touching edges count.
// Longitudes are compared as plain numbers, there is no antimeridian wrap.
func (r GeoRect) Intersects(other GeoRect) bool {
	if r.MaxLon < other.MinLon || other.MaxLon < r.MinLon {
		return false
	}
	if r.MinLat > other.MaxLat || other.MinLat > r.MaxLat {
		return false
	}
	return true
}

// Contains reports whether the point lies inside the rectangle, boundary included.
func (r GeoRect) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// IsValid reports whether the rectangle has been expanded at least once.
func (r GeoRect) IsValid() bool {
	return r.MinLat <= r.MaxLat && r.MinLon <= r.MaxLon && r.MinLat != math.MaxFloat64
}

// Center returns the midpoint of the rectangle.
func (r GeoRect) Center() (lat, lon float64) {
	return (r.MinLat + r.MaxLat) / 2.0, (r.MinLon + r.MaxLon) / 2.0
}

// Area returns the surface of the latitude band limited to the longitude span,
// in square kilometers on a sphere of radius EarthRadiusKm.
//
// It is an approximation used as a split and enlargement heuristic, not for
// geodesy. Invalid rectangles have zero area.
func (r GeoRect) Area() float64 {
	if !r.IsValid() {
		return 0
	}

	minLatRad := r.MinLat * math.Pi / 180.0
	maxLatRad := r.MaxLat * math.Pi / 180.0
	dLon := (r.MaxLon - r.MinLon) * math.Pi / 180.0

	return EarthRadiusKm * EarthRadiusKm * dLon * (math.Sin(maxLatRad) - math.Sin(minLatRad))
}

// EnlargementArea returns how much Area grows if r is expanded to cover other.
func (r GeoRect) EnlargementArea(other GeoRect) float64 {
	if !r.IsValid() {
		return other.Area()
	}
	if !other.IsValid() {
		return 0
	}

	combined := Rect(
		minf(r.MinLat, other.MinLat), minf(r.MinLon, other.MinLon),
		maxf(r.MaxLat, other.MaxLat), maxf(r.MaxLon, other.MaxLon),
	)
	return combined.Area() - r.Area()
}

// minf and maxf keep the first operand unless the second compares strictly
// better, so a NaN argument never replaces an existing bound.
func minf(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

func maxf(a, b float64) float64 {
	if a < b {
		return b
	}
	return a
}
