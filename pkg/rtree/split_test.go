package rtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseSeedsPicksMostWastefulPair(t *testing.T) {
	rects := []GeoRect{
		Rect(0, 0, 1, 1),
		Rect(1, 1, 2, 2),
		Rect(50, 50, 51, 51),
	}

	s1, s2 := chooseSeeds(rects)
	assert.Equal(t, 0, s1)
	assert.Equal(t, 2, s2)
}

func TestChooseSeedsFirstPairWinsTies(t *testing.T) {
	r := Rect(5, 5, 6, 6)

	s1, s2 := chooseSeeds([]GeoRect{r, r, r, r})
	assert.Equal(t, 0, s1)
	assert.Equal(t, 1, s2)
}

func TestPartitionForcedAssignment(t *testing.T) {
	rects := []GeoRect{
		Rect(0, 0, 1, 1),
		Rect(80, 80, 81, 81),
		Rect(0.2, 0.2, 0.8, 0.8),
		Rect(0.1, 0.1, 0.9, 0.9),
		Rect(0.3, 0.3, 0.7, 0.7),
	}

	g1, g2 := partition(rects, 2)
	assert.Equal(t, []int{0, 2, 3}, g1)
	// the last item would fit group1 better but group2 needs it to reach the minimum
	assert.Equal(t, []int{1, 4}, g2)
}

func TestPartitionTieBreaksOnGroupSize(t *testing.T) {
	r := Rect(5, 5, 6, 6)

	g1, g2 := partition([]GeoRect{r, r, r, r, r}, 2)
	assert.Equal(t, []int{0, 2, 4}, g1)
	assert.Equal(t, []int{1, 3}, g2)
}

func TestPartitionCoversEveryItemOnce(t *testing.T) {
	var rects []GeoRect
	for i := 0; i < 9; i++ {
		rects = append(rects, gridRect(i*3))
	}

	g1, g2 := partition(rects, 4)
	assert.GreaterOrEqual(t, len(g1), 4)
	assert.GreaterOrEqual(t, len(g2), 4)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, append(append([]int{}, g1...), g2...))
}

func TestInsertOnlyTreeRespectsMinimumFill(t *testing.T) {
	idx := New(5, 2)
	for i := 0; i < 60; i++ {
		idx.Insert(i, gridRect(i))
	}
	checkInvariants(t, idx)

	root := idx.Root()
	idx.Walk(func(n Node, depth int) bool {
		if n != root {
			assert.GreaterOrEqual(t, n.Len(), idx.MinEntries(), "underfull node at depth %d", depth)
		}
		return true
	})
}

func TestSplitInternalKeepsChildren(t *testing.T) {
	idx := New(4, 2)
	n := NewInternal()
	for i := 0; i < 5; i++ {
		l := NewLeaf()
		l.AddEntry(i, gridRect(i*4))
		n.AddChild(l)
	}

	sibling := idx.splitInternal(n).(*Internal)
	assert.Equal(t, 5, n.Len()+sibling.Len())
	assert.GreaterOrEqual(t, n.Len(), 2)
	assert.GreaterOrEqual(t, sibling.Len(), 2)
	assert.Equal(t, n.unionOf(), n.Rect())
	assert.Equal(t, sibling.unionOf(), sibling.Rect())

	keys := n.Search(WorldRect(), nil)
	keys = sibling.Search(WorldRect(), keys)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, keys)
}
