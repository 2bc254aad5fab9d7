package rtree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceToBox(t *testing.T) {
	assert := assert.New(t)
	box := Rect(10, 10, 20, 20)

	assert.Equal(0.0, DistanceToBox(15, 15, box))
	assert.Equal(0.0, DistanceToBox(10, 20, box))

	// closest point is the corner (20, 20), center sum is 30
	assert.InDelta(math.Sqrt(50)-0.003, DistanceToBox(25, 25, box), 1e-12)
	// closest point is on the edge lat=10
	assert.InDelta(5-0.003, DistanceToBox(5, 15, box), 1e-12)
}

func TestFindNearestCorners(t *testing.T) {
	assert := assert.New(t)

	idx := NewDefault()
	idx.Insert(1, Rect(10, 10, 20, 20))
	idx.Insert(2, Rect(50, 10, 60, 20))
	idx.Insert(3, Rect(10, 50, 20, 60))
	idx.Insert(4, Rect(50, 50, 60, 60))
	idx.Insert(5, Rect(30, 30, 40, 40))

	assert.Equal(5, idx.FindNearest(35, 35))
	assert.Equal(5, idx.FindNearest(25, 25))
	assert.Equal(4, idx.FindNearest(80, 80))
	assert.Equal(1, idx.FindNearest(15, 15))
	// boxes 1 and 5 are both 10 away; the larger center sum wins
	assert.Equal(5, idx.FindNearest(30, 20))
}

func TestFindNearestDiagonal(t *testing.T) {
	idx := NewDefault()
	idx.Insert(1, Rect(10, 10, 20, 20))
	idx.Insert(2, Rect(30, 30, 40, 40))
	idx.Insert(3, Rect(50, 50, 60, 60))
	idx.Insert(4, Rect(70, 70, 80, 80))

	assert.Equal(t, 2, idx.FindNearest(25, 25))
	assert.Equal(t, 3, idx.FindNearest(45, 45))
}

func TestFindNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for round := 0; round < 20; round++ {
		idx := NewDefault()
		var entries []Entry
		for k := 1; k <= idx.MaxEntries(); k++ {
			lat := rng.Float64() * 60
			lon := rng.Float64() * 60
			r := Rect(lat, lon, lat+rng.Float64()*10, lon+rng.Float64()*10)
			entries = append(entries, Entry{Key: k, Rect: r})
			idx.Insert(k, r)
		}

		for q := 0; q < 25; q++ {
			lat := rng.Float64()*100 - 20
			lon := rng.Float64()*100 - 20

			want, best := 0, math.MaxFloat64
			for _, e := range entries {
				if d := DistanceToBox(lat, lon, e.Rect); d < best {
					want, best = e.Key, d
				}
			}

			got, ok := idx.FindNearestOK(lat, lon)
			assert.True(t, ok)
			assert.Equal(t, want, got, "round %d point (%f, %f)", round, lat, lon)
		}
	}
}

func TestFindNearestMultiLevel(t *testing.T) {
	idx := New(4, 2)
	for i := 1; i <= 20; i++ {
		idx.Insert(i, gridRect(i-1))
	}

	for i := 1; i <= 20; i++ {
		lat, lon := gridRect(i - 1).Center()
		assert.Equal(t, i, idx.FindNearest(lat, lon))
	}

	assert.Equal(t, 20, idx.FindNearest(100, 100))
	assert.Equal(t, 1, idx.FindNearest(-10, -10))
}

func TestFindNearestZeroKey(t *testing.T) {
	idx := NewDefault()
	idx.Insert(0, Rect(0, 0, 1, 1))

	key, ok := idx.FindNearestOK(5, 5)
	assert.True(t, ok)
	assert.Equal(t, 0, key)
}
