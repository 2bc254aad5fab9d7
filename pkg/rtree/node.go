package rtree

import "slices"

// Entry is a leaf payload: an opaque caller key and its bounding rectangle.
type Entry struct {
	Key  int     `json:"key" yaml:"key"`
	Rect GeoRect `json:"rect" yaml:"rect"`
}

// Node is a tree node. It is implemented only by *Leaf and *Internal.
type Node interface {
	// Rect returns the cached union of the node's contents.
	Rect() GeoRect
	// Search appends the keys of entries intersecting query to results.
	Search(query GeoRect, results []int) []int
	// IsFull reports whether the node holds at least maxEntries items.
	IsFull(maxEntries int) bool
	// Len returns the number of direct items (entries or children).
	Len() int

	sealed()
}

// Leaf holds entries for indexed objects.
type Leaf struct {
	entries []Entry
	rect    GeoRect
}

// NewLeaf returns an empty leaf with an invalid rectangle.
func NewLeaf() *Leaf {
	return &Leaf{rect: NewGeoRect()}
}

func (*Leaf) sealed() {}

// Rect implements Node.
func (l *Leaf) Rect() GeoRect { return l.rect }

// Len implements Node.
func (l *Leaf) Len() int { return len(l.entries) }

// IsFull implements Node.
func (l *Leaf) IsFull(maxEntries int) bool { return len(l.entries) >= maxEntries }

// Search implements Node.
func (l *Leaf) Search(query GeoRect, results []int) []int {
	for _, e := range l.entries {
		if e.Rect.Intersects(query) {
			results = append(results, e.Key)
		}
	}
	return results
}

// AddEntry appends an entry and expands the cached rectangle.
func (l *Leaf) AddEntry(key int, rect GeoRect) {
	l.entries = append(l.entries, Entry{Key: key, Rect: rect})
	l.rect.Expand(rect)
}

// AddEntries appends entries one by one.
func (l *Leaf) AddEntries(entries []Entry) {
	for _, e := range entries {
		l.AddEntry(e.Key, e.Rect)
	}
}

// ClearEntries empties the leaf and resets its rectangle.
func (l *Leaf) ClearEntries() {
	l.entries = nil
	l.rect = NewGeoRect()
}

// Entries returns the leaf's entries. The slice must not be modified.
func (l *Leaf) Entries() []Entry { return l.entries }

// Internal groups owned child nodes.
type Internal struct {
	children []Node
	rect     GeoRect
}

// NewInternal returns an internal node without children.
func NewInternal() *Internal {
	return &Internal{rect: NewGeoRect()}
}

func (*Internal) sealed() {}

// Rect implements Node.
func (n *Internal) Rect() GeoRect { return n.rect }

// Len implements Node.
func (n *Internal) Len() int { return len(n.children) }

// IsFull implements Node.
func (n *Internal) IsFull(maxEntries int) bool { return len(n.children) >= maxEntries }

// Search implements Node. Every child is visited; filtering happens at the leaves.
func (n *Internal) Search(query GeoRect, results []int) []int {
	for _, c := range n.children {
		results = c.Search(query, results)
	}
	return results
}

// AddChild takes ownership of child and expands the cached rectangle.
func (n *Internal) AddChild(child Node) {
	n.rect.Expand(child.Rect())
	n.children = append(n.children, child)
}

// RemoveChild detaches and returns the child at i, or nil if i is out of range.
// The cached rectangle is recomputed from the remaining children.
func (n *Internal) RemoveChild(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}

	child := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)

	n.rect = n.unionOf()
	return child
}

// ClearChildren drops all children and resets the rectangle.
func (n *Internal) ClearChildren() {
	n.children = nil
	n.rect = NewGeoRect()
}

// SetRect overrides the cached rectangle.
func (n *Internal) SetRect(r GeoRect) { n.rect = r }

// Children returns the child nodes. The slice must not be modified.
func (n *Internal) Children() []Node { return n.children }

// Child returns the child at i, or nil if i is out of range.
func (n *Internal) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// unionOf recomputes the union of the children's rectangles.
func (n *Internal) unionOf() GeoRect {
	r := NewGeoRect()
	for _, c := range n.children {
		r.Expand(c.Rect())
	}
	return r
}
