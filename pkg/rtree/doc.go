// Package rtree implements an R-tree over latitude/longitude bounding
// rectangles.
//
// The tree stores opaque integer keys together with a GeoRect and answers
// rectangle intersection, segment bounding-box and nearest-rectangle queries.
// Nodes split with the quadratic algorithm. Deletion only removes emptied
// nodes and never merges underfull siblings, and Update rebuilds the whole
// tree, so both are O(n) operations.
//
// An Index is not safe for concurrent use. Callers sharing one across
// goroutines must serialize Insert, Delete and Update (Update rewrites the
// whole tree) against each other and against readers.
package rtree
