package cluster

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/xHezuSx/gpwdigest/internal/models"
)

// maxIterations caps the Lloyd refinement loop. Chunk embeddings converge in
// a handful of rounds, so the cap only guards against oscillation.
const maxIterations = 20

// Selector picks representative chunks via k-means over chunk embeddings.
// Selection is deterministic for a fixed embedder: centroids seed from evenly
// spaced chunk positions instead of random picks, and every tie breaks toward
// the lower index.
type Selector struct {
	embedder Embedder
}

// NewSelector returns a selector using embedder for chunk vectors.
func NewSelector(embedder Embedder) *Selector {
	return &Selector{embedder: embedder}
}

// SelectRepresentatives clusters chunks into at most k groups and returns one
// representative chunk per non-empty cluster, ordered by position in the
// document. When k >= len(chunks) every chunk is its own representative.
// Embedding and clustering failures wrap models.ErrClustering; an unreachable
// embedding model additionally carries models.ErrModelUnavailable.
func (s *Selector) SelectRepresentatives(ctx context.Context, chunks []models.Chunk, k int) ([]models.Chunk, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to cluster", models.ErrInvalidInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: cluster count %d must be positive", models.ErrInvalidInput, k)
	}
	if k >= len(chunks) {
		out := make([]models.Chunk, len(chunks))
		copy(out, chunks)
		return out, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %w", models.ErrClustering, err)
	}
	for i, emb := range embeddings {
		if len(emb) == 0 || len(emb) != len(embeddings[0]) {
			return nil, fmt.Errorf("%w: inconsistent embedding at chunk %d", models.ErrClustering, i)
		}
	}

	assignments, centroids := lloyd(embeddings, k)

	// One representative per non-empty cluster: the member closest to the
	// cluster centroid. Empty clusters contribute nothing.
	repByCluster := make(map[int]int, k)
	for i, c := range assignments {
		best, seen := repByCluster[c]
		if !seen || squaredDistance(embeddings[i], centroids[c]) < squaredDistance(embeddings[best], centroids[c]) {
			repByCluster[c] = i
		}
	}

	indices := make([]int, 0, len(repByCluster))
	for _, idx := range repByCluster {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	reps := make([]models.Chunk, len(indices))
	for i, idx := range indices {
		reps[i] = chunks[idx]
	}
	return reps, nil
}

// lloyd runs k-means with evenly spaced seeding and returns the final
// per-point cluster assignments and centroids.
func lloyd(points [][]float64, k int) ([]int, [][]float64) {
	n := len(points)
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		seed := c * n / k
		centroids[c] = append([]float64(nil), points[seed]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := squaredDistance(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := squaredDistance(p, centroids[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids; clusters that lost all members keep their
		// previous centroid and simply end up empty.
		dim := len(points[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			for j, v := range p {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}
	return assignments, centroids
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	if math.IsNaN(sum) {
		return math.Inf(1)
	}
	return sum
}
