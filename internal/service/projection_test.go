package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectTo2D(t *testing.T) {
	t.Run("one point per input vector", func(t *testing.T) {
		points := ProjectTo2D(separatedVectors(3, 5))
		assert.Len(t, points, 15)
	})

	t.Run("deterministic", func(t *testing.T) {
		vectors := separatedVectors(3, 5)
		first := ProjectTo2D(vectors)
		second := ProjectTo2D(vectors)
		assert.Equal(t, first, second)
	})

	t.Run("separated groups stay separated in 2-D", func(t *testing.T) {
		vectors := separatedVectors(2, 10)
		points := ProjectTo2D(vectors)
		require.Len(t, points, 20)

		centroidA := centroid2D(points[:10])
		centroidB := centroid2D(points[10:])
		between := distance2D(centroidA, centroidB)

		var maxSpread float64
		for _, p := range points[:10] {
			if d := distance2D(p, centroidA); d > maxSpread {
				maxSpread = d
			}
		}
		for _, p := range points[10:] {
			if d := distance2D(p, centroidB); d > maxSpread {
				maxSpread = d
			}
		}

		assert.Greater(t, between, maxSpread*4, "group gap must dominate intra-group spread")
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ProjectTo2D(nil))
	})

	t.Run("identical points collapse to the origin", func(t *testing.T) {
		vectors := [][]float32{{1, 2}, {1, 2}, {1, 2}}
		points := ProjectTo2D(vectors)

		for _, p := range points {
			assert.InDelta(t, 0, p[0], 1e-9)
			assert.InDelta(t, 0, p[1], 1e-9)
		}
	})
}

func centroid2D(points [][2]float64) [2]float64 {
	var c [2]float64
	for _, p := range points {
		c[0] += p[0]
		c[1] += p[1]
	}
	c[0] /= float64(len(points))
	c[1] /= float64(len(points))
	return c
}

func distance2D(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}
