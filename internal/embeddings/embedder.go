package embeddings

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding is returned when a provider answers without a vector.
var ErrEmptyEmbedding = errors.New("provider returned an empty embedding")

// ErrDimensionMismatch is returned when a vector's length differs from the
// embedder's configured dimensions.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
