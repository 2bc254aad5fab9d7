// Package geo extracts bounding rectangles from vector features.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/woozymasta/geoindex/pkg/rtree"
)

// BoundsOfPolygon returns the rectangle covering every ring point of p.
// Points are read as orb does, X is longitude and Y is latitude.
func BoundsOfPolygon(p orb.Polygon) rtree.GeoRect {
	r := rtree.NewGeoRect()
	for _, ring := range p {
		expandPoints(&r, ring)
	}
	return r
}

// BoundsOfGeometry returns the rectangle covering all points of g.
// A nil or empty geometry yields an invalid rectangle.
func BoundsOfGeometry(g orb.Geometry) rtree.GeoRect {
	r := rtree.NewGeoRect()

	switch g := g.(type) {
	case orb.Point:
		r.ExpandPoint(g.Lat(), g.Lon())
	case orb.MultiPoint:
		expandPoints(&r, g)
	case orb.LineString:
		expandPoints(&r, g)
	case orb.Ring:
		expandPoints(&r, g)
	case orb.MultiLineString:
		for _, ls := range g {
			expandPoints(&r, ls)
		}
	case orb.Polygon:
		r = BoundsOfPolygon(g)
	case orb.MultiPolygon:
		for _, p := range g {
			r.Expand(BoundsOfPolygon(p))
		}
	case orb.Collection:
		for _, c := range g {
			r.Expand(BoundsOfGeometry(c))
		}
	case orb.Bound:
		r.ExpandPoint(g.Min.Lat(), g.Min.Lon())
		r.ExpandPoint(g.Max.Lat(), g.Max.Lon())
	}

	return r
}

// BoundsOfFeature returns the rectangle covering the feature geometry.
func BoundsOfFeature(f *geojson.Feature) rtree.GeoRect {
	if f == nil || f.Geometry == nil {
		return rtree.NewGeoRect()
	}
	return BoundsOfGeometry(f.Geometry)
}

func expandPoints[T ~[]orb.Point](r *rtree.GeoRect, pts T) {
	for _, pt := range pts {
		r.ExpandPoint(pt.Lat(), pt.Lon())
	}
}
