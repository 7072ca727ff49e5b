package service

import "math"

// ProjectTo2D reduces the embedding matrix to two dimensions with PCA (power
// iteration on the covariance, deflation for the second component). Exact
// coordinates are not a compatibility requirement; what matters is that
// relative neighbor structure survives and the output is deterministic.
func ProjectTo2D(vectors [][]float32) [][2]float64 {
	n := len(vectors)
	points := make([][2]float64, n)
	if n == 0 {
		return points
	}
	dim := len(vectors[0])
	if dim == 0 {
		return points
	}

	// Center the data.
	mean := make([]float64, dim)
	for _, vec := range vectors {
		for d, v := range vec {
			mean[d] += float64(v)
		}
	}
	for d := range mean {
		mean[d] /= float64(n)
	}

	centered := make([][]float64, n)
	for i, vec := range vectors {
		row := make([]float64, dim)
		for d, v := range vec {
			row[d] = float64(v) - mean[d]
		}
		centered[i] = row
	}

	first := principalComponent(centered, nil)
	second := principalComponent(centered, first)

	for i, row := range centered {
		points[i][0] = dot(row, first)
		points[i][1] = dot(row, second)
	}
	return points
}

const (
	powerIterations = 50
	powerTolerance  = 1e-7
)

// principalComponent finds the dominant eigenvector of the covariance of rows
// via power iteration. When deflate is non-nil, that direction is projected
// out first, yielding the next orthogonal component. The starting vector is
// fixed, keeping the projection deterministic.
func principalComponent(rows [][]float64, deflate []float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	dim := len(rows[0])

	v := make([]float64, dim)
	for d := range v {
		// Deterministic non-degenerate start.
		v[d] = 1.0 / float64(d+1)
	}
	normalizeInPlace(v)

	next := make([]float64, dim)
	for iter := 0; iter < powerIterations; iter++ {
		// next = Cov * v computed as X^T (X v) without forming Cov.
		for d := range next {
			next[d] = 0
		}
		for _, row := range rows {
			proj := dot(row, v)
			for d, r := range row {
				next[d] += proj * r
			}
		}

		if deflate != nil {
			removeComponent(next, deflate)
		}

		norm := normalizeInPlace(next)
		if norm == 0 {
			break
		}

		var delta float64
		for d := range v {
			delta += math.Abs(next[d] - v[d])
		}
		copy(v, next)
		if delta < powerTolerance {
			break
		}
	}

	return v
}

// removeComponent subtracts the projection of v onto direction, in place.
func removeComponent(v, direction []float64) {
	proj := dot(v, direction)
	for d := range v {
		v[d] -= proj * direction[d]
	}
}

// normalizeInPlace scales v to unit length and returns the original norm.
func normalizeInPlace(v []float64) float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return 0
	}
	for d := range v {
		v[d] /= norm
	}
	return norm
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
