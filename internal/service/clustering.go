package service

import (
	"log/slog"
	"math"
	"math/rand"
)

// MiniBatchKMeans assigns a cluster id to every embedding vector using seeded
// mini-batch k-means. A fixed seed means identical input vectors always
// produce identical assignments across runs; labels are only meaningful within
// one run and are recomputed, never diffed.
type MiniBatchKMeans struct {
	BatchSize     int
	MaxIterations int
}

const (
	defaultClusterBatchSize = 512
	defaultMaxIterations    = 100
)

// NewMiniBatchKMeans creates a clustering engine with the given mini-batch
// size. Non-positive values fall back to defaults.
func NewMiniBatchKMeans(batchSize int) *MiniBatchKMeans {
	if batchSize <= 0 {
		batchSize = defaultClusterBatchSize
	}
	return &MiniBatchKMeans{
		BatchSize:     batchSize,
		MaxIterations: defaultMaxIterations,
	}
}

// FitPredict returns one label in [0,k) per input vector. k is clamped to the
// number of vectors. Not every label is necessarily occupied when clusters
// collapse on degenerate inputs.
func (m *MiniBatchKMeans) FitPredict(vectors [][]float32, k, seed int) []int {
	n := len(vectors)
	if n == 0 {
		return []int{}
	}
	if k > n {
		k = n
	}
	if k <= 1 {
		return make([]int, n)
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	centroids := initCentroidsPlusPlus(vectors, k, rng)

	batchSize := m.BatchSize
	if batchSize > n {
		batchSize = n
	}

	// Per-centroid update counts drive the decaying learning rate.
	counts := make([]int, k)

	for iter := 0; iter < m.MaxIterations; iter++ {
		moved := 0.0
		for b := 0; b < batchSize; b++ {
			idx := rng.Intn(n)
			point := vectors[idx]
			nearest := nearestCentroid(point, centroids)

			counts[nearest]++
			eta := 1.0 / float64(counts[nearest])
			centroid := centroids[nearest]
			for d := range centroid {
				step := eta * (float64(point[d]) - centroid[d])
				centroid[d] += step
				moved += math.Abs(step)
			}
		}

		if moved < 1e-9 {
			slog.Debug("mini-batch k-means converged", "iterations", iter+1)
			break
		}
	}

	// Final full assignment pass over every vector, in input order.
	labels := make([]int, n)
	for i, vec := range vectors {
		labels[i] = nearestCentroid(vec, centroids)
	}
	return labels
}

// initCentroidsPlusPlus seeds k centroids with the k-means++ scheme: the first
// uniformly, the rest proportionally to squared distance from the nearest
// already-chosen centroid.
func initCentroidsPlusPlus(vectors [][]float32, k int, rng *rand.Rand) [][]float64 {
	n := len(vectors)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, toFloat64(vectors[rng.Intn(n)]))

	distances := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, vec := range vectors {
			best := math.Inf(1)
			for _, c := range centroids {
				if d := squaredDistance(vec, c); d < best {
					best = d
				}
			}
			distances[i] = best
			total += best
		}

		if total == 0 {
			// All points coincide with a centroid; duplicate one.
			centroids = append(centroids, toFloat64(vectors[rng.Intn(n)]))
			continue
		}

		target := rng.Float64() * total
		var cumulative float64
		chosen := n - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, toFloat64(vectors[chosen]))
	}

	return centroids
}

// nearestCentroid returns the index of the centroid closest to the point.
// Ties resolve to the lowest index, keeping assignments deterministic.
func nearestCentroid(point []float32, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := squaredDistance(point, c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// squaredDistance computes squared Euclidean distance between a point and a centroid.
func squaredDistance(point []float32, centroid []float64) float64 {
	var sum float64
	for d := range point {
		diff := float64(point[d]) - centroid[d]
		sum += diff * diff
	}
	return sum
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, val := range v {
		out[i] = float64(val)
	}
	return out
}
