package rtree

import (
	"math"
	"sort"
)

type nearestItem struct {
	key      int
	distance float64
	found    bool
}

// FindNearest returns the key whose rectangle is closest to the point.
// It returns 0 when the index is empty; use FindNearestOK when 0 is a valid key.
func (t *Index) FindNearest(lat, lon float64) int {
	key, _ := t.FindNearestOK(lat, lon)
	return key
}

// FindNearestOK is FindNearest with an explicit found flag.
func (t *Index) FindNearestOK(lat, lon float64) (int, bool) {
	best := nearestItem{distance: math.MaxFloat64}
	findNearest(t.root, lat, lon, &best)
	return best.key, best.found
}

type childDistance struct {
	node     Node
	distance float64
}

func findNearest(n Node, lat, lon float64, best *nearestItem) {
	switch n := n.(type) {
	case *Leaf:
		for _, e := range n.entries {
			d := DistanceToBox(lat, lon, e.Rect)
			if d < best.distance {
				best.distance = d
				best.key = e.Key
				best.found = true
			}
		}

	case *Internal:
		ordered := make([]childDistance, len(n.children))
		for i, c := range n.children {
			ordered[i] = childDistance{node: c, distance: DistanceToBox(lat, lon, c.Rect())}
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].distance < ordered[j].distance
		})

		for _, c := range ordered {
			// children are sorted, nothing further can beat the current best
			if c.distance > best.distance {
				break
			}
			findNearest(c.node, lat, lon, best)
		}
	}
}

// DistanceToBox returns 0 when the point lies inside rect. Otherwise it is the
// planar distance in degrees from the point to the closest point of rect,
// minus 0.0001 times the sum of the rectangle's center coordinates.
//
// The subtracted term only orders equidistant rectangles deterministically.
func DistanceToBox(lat, lon float64, rect GeoRect) float64 {
	if rect.Contains(lat, lon) {
		return 0
	}

	closestLat := maxf(rect.MinLat, minf(lat, rect.MaxLat))
	closestLon := maxf(rect.MinLon, minf(lon, rect.MaxLon))

	dLat := lat - closestLat
	dLon := lon - closestLon
	dist := math.Sqrt(dLat*dLat + dLon*dLon)

	centerLat, centerLon := rect.Center()
	return dist - 0.0001*(centerLat+centerLon)
}
