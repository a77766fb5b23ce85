// Package cluster selects representative chunks from a document by k-means
// clustering over chunk embeddings.
package cluster

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
