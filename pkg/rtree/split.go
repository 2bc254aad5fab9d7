package rtree

import "math"

// splitLeaf moves part of an overflowing leaf into a new sibling leaf.
func (t *Index) splitLeaf(l *Leaf) Node {
	entries := l.entries
	rects := make([]GeoRect, len(entries))
	for i, e := range entries {
		rects[i] = e.Rect
	}

	group1, group2 := partition(rects, t.minEntries)

	l.ClearEntries()
	for _, i := range group1 {
		l.AddEntry(entries[i].Key, entries[i].Rect)
	}

	sibling := NewLeaf()
	for _, i := range group2 {
		sibling.AddEntry(entries[i].Key, entries[i].Rect)
	}

	return sibling
}

// splitInternal moves part of an overflowing internal node's children into a
// new sibling. Children are detached from n before being redistributed.
func (t *Index) splitInternal(n *Internal) Node {
	children := n.children
	rects := make([]GeoRect, len(children))
	for i, c := range children {
		rects[i] = c.Rect()
	}

	group1, group2 := partition(rects, t.minEntries)

	n.ClearChildren()
	for _, i := range group1 {
		n.AddChild(children[i])
	}

	sibling := NewInternal()
	for _, i := range group2 {
		sibling.AddChild(children[i])
	}

	return sibling
}

// chooseSeeds returns the pair wasting the most area when grouped together.
// The first maximal pair in scan order wins.
func chooseSeeds(rects []GeoRect) (int, int) {
	seed1, seed2 := 0, 1
	maxWaste := math.Inf(-1)

	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			waste := rects[i].Union(rects[j]).Area() - rects[i].Area() - rects[j].Area()
			if waste > maxWaste {
				maxWaste = waste
				seed1, seed2 = i, j
			}
		}
	}

	return seed1, seed2
}

// partition distributes rects (at least two) into two groups of indexes using
// the quadratic split: seeds first, then every other item in its original
// order. An item goes to a group unconditionally when that group could not
// otherwise reach minEntries; else to the group whose rectangle grows least,
// then to the smaller group, then to group1.
func partition(rects []GeoRect, minEntries int) (group1, group2 []int) {
	seed1, seed2 := chooseSeeds(rects)

	group1 = append(make([]int, 0, len(rects)), seed1)
	group2 = append(make([]int, 0, len(rects)), seed2)
	box1, box2 := rects[seed1], rects[seed2]

	remaining := len(rects) - 2
	for i, r := range rects {
		if i == seed1 || i == seed2 {
			continue
		}

		switch {
		case len(group1)+remaining <= minEntries:
			group1 = append(group1, i)
			box1.Expand(r)

		case len(group2)+remaining <= minEntries:
			group2 = append(group2, i)
			box2.Expand(r)

		default:
			e1 := box1.EnlargementArea(r)
			e2 := box2.EnlargementArea(r)

			toFirst := e1 < e2
			if !toFirst && !(e2 < e1) {
				toFirst = len(group1) <= len(group2)
			}

			if toFirst {
				group1 = append(group1, i)
				box1.Expand(r)
			} else {
				group2 = append(group2, i)
				box2.Expand(r)
			}
		}

		remaining--
	}

	return group1, group2
}
