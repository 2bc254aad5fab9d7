package rtree

// Default node capacities.
const (
	DefaultMaxEntries = 8
	DefaultMinEntries = 3
)

// Index is an R-tree keyed by caller-owned integer identifiers.
type Index struct {
	root       Node
	maxEntries int
	minEntries int
}

// New creates an empty index.
//
// maxEntries is raised to 2 when smaller. minEntries is clamped to
// [2, maxEntries/2]; for maxEntries below 4 the upper bound wins.
func New(maxEntries, minEntries int) *Index {
	if maxEntries < 2 {
		maxEntries = 2
	}
	minEntries = min(max(minEntries, 2), maxEntries/2)

	return &Index{
		root:       NewLeaf(),
		maxEntries: maxEntries,
		minEntries: minEntries,
	}
}

// NewDefault creates an empty index with DefaultMaxEntries and DefaultMinEntries.
func NewDefault() *Index {
	return New(DefaultMaxEntries, DefaultMinEntries)
}

// MaxEntries returns the node capacity.
func (t *Index) MaxEntries() int { return t.maxEntries }

// MinEntries returns the effective minimum fill used by splits.
func (t *Index) MinEntries() int { return t.minEntries }

// Root returns the root node. It is never nil.
func (t *Index) Root() Node { return t.root }

// Bounds returns the rectangle covering every indexed entry.
// It is invalid when the index is empty.
func (t *Index) Bounds() GeoRect { return t.root.Rect() }

// Len returns the number of indexed entries.
func (t *Index) Len() int {
	n := 0
	t.Walk(func(node Node, _ int) bool {
		if l, ok := node.(*Leaf); ok {
			n += l.Len()
		}
		return true
	})
	return n
}

// Height returns the number of levels, 1 for a tree that is a single leaf.
func (t *Index) Height() int {
	h := 1
	node := t.root
	for {
		in, ok := node.(*Internal)
		if !ok || in.Len() == 0 {
			return h
		}
		node = in.Child(0)
		h++
	}
}

// Walk visits nodes in pre-order, passing the depth (root is 0).
// Returning false from fn stops the walk.
func (t *Index) Walk(fn func(n Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	if in, ok := n.(*Internal); ok {
		for _, c := range in.children {
			if !walk(c, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// Insert adds key with its rectangle. Keys are not checked for uniqueness.
func (t *Index) Insert(key int, rect GeoRect) {
	sibling := t.insert(t.root, key, rect)
	if sibling == nil {
		return
	}

	root := NewInternal()
	root.AddChild(t.root)
	root.AddChild(sibling)
	t.root = root
}

// insert places the entry under n and returns the new sibling if n split.
func (t *Index) insert(n Node, key int, rect GeoRect) Node {
	switch n := n.(type) {
	case *Leaf:
		n.AddEntry(key, rect)
		if n.Len() > t.maxEntries {
			return t.splitLeaf(n)
		}

	case *Internal:
		best := chooseBestChild(n, rect)
		sibling := t.insert(n.children[best], key, rect)
		if sibling == nil {
			n.rect.Expand(rect)
			return nil
		}

		n.AddChild(sibling)
		n.SetRect(n.unionOf())
		if n.Len() > t.maxEntries {
			return t.splitInternal(n)
		}
	}

	return nil
}

// chooseBestChild picks the child needing the least enlargement to cover rect,
// preferring the smaller area on ties and the lower index after that.
func chooseBestChild(n *Internal, rect GeoRect) int {
	if len(n.children) == 0 {
		return 0
	}

	best := 0
	minEnlargement := n.children[0].Rect().EnlargementArea(rect)
	minArea := n.children[0].Rect().Area()

	for i := 1; i < len(n.children); i++ {
		r := n.children[i].Rect()
		enlargement := r.EnlargementArea(rect)
		area := r.Area()

		if enlargement < minEnlargement {
			minEnlargement = enlargement
			minArea = area
			best = i
		} else if enlargement == minEnlargement && area < minArea {
			minArea = area
			best = i
		}
	}

	return best
}

// Search returns the keys whose rectangles intersect query.
func (t *Index) Search(query GeoRect) []int {
	return t.root.Search(query, []int{})
}

// SearchLineIntersection returns the keys whose rectangles intersect the
// bounding rectangle of the segment. The result is a superset of the entries
// actually crossed by the segment.
func (t *Index) SearchLineIntersection(lat1, lon1, lat2, lon2 float64) []int {
	return t.Search(LineRect(lat1, lon1, lat2, lon2))
}

// Delete removes key from the index and reports whether it was present.
// Emptied nodes are dropped; underfull nodes are left as they are.
func (t *Index) Delete(key int) bool {
	root, found := t.delete(t.root, key)
	if !found {
		return false
	}

	if root == nil {
		root = NewLeaf()
	}
	if in, ok := root.(*Internal); ok && in.Len() == 1 {
		root = in.Child(0)
	}
	t.root = root

	return true
}

// delete returns the replacement for n, nil when n became empty.
func (t *Index) delete(n Node, key int) (Node, bool) {
	switch n := n.(type) {
	case *Leaf:
		remaining := make([]Entry, 0, len(n.entries))
		found := false
		for _, e := range n.entries {
			if e.Key == key {
				found = true
				continue
			}
			remaining = append(remaining, e)
		}

		if !found {
			return n, false
		}
		if len(remaining) == 0 {
			return nil, true
		}

		leaf := NewLeaf()
		leaf.AddEntries(remaining)
		return leaf, true

	case *Internal:
		kept := make([]Node, 0, len(n.children))
		found := false
		for _, c := range n.children {
			if found {
				kept = append(kept, c)
				continue
			}

			updated, ok := t.delete(c, key)
			if ok {
				found = true
				if updated != nil {
					kept = append(kept, updated)
				}
				continue
			}
			kept = append(kept, c)
		}

		if !found {
			return n, false
		}
		if len(kept) == 0 {
			return nil, true
		}

		in := NewInternal()
		for _, c := range kept {
			in.AddChild(c)
		}
		return in, true
	}

	return n, false
}

// Update moves key to rect by rebuilding the index without it and inserting
// it again. It reports false and leaves the index untouched if key is absent.
func (t *Index) Update(key int, rect GeoRect) bool {
	rebuilt := New(t.maxEntries, t.minEntries)

	found := false
	for _, k := range t.Search(WorldRect()) {
		if k == key {
			found = true
			continue
		}
		if box, ok := t.FindBoxForIndex(k); ok {
			rebuilt.Insert(k, box)
		}
	}

	if !found {
		return false
	}

	rebuilt.Insert(key, rect)
	t.root = rebuilt.root
	return true
}

// FindBoxForIndex returns the rectangle of the first entry stored under key.
func (t *Index) FindBoxForIndex(key int) (GeoRect, bool) {
	return findBox(t.root, key)
}

func findBox(n Node, key int) (GeoRect, bool) {
	switch n := n.(type) {
	case *Leaf:
		for _, e := range n.entries {
			if e.Key == key {
				return e.Rect, true
			}
		}
	case *Internal:
		for _, c := range n.children {
			if r, ok := findBox(c, key); ok {
				return r, true
			}
		}
	}
	return GeoRect{}, false
}
