package vectordb

import "context"

// Item is one (vector, metadata) pair stored in the index.
type Item struct {
	ID      string
	Content string
	Type    string
	Vector  []float32
	Meta    map[string]string
}

// Hit is a nearest-neighbor result. Seq is the insertion ordinal of the
// item since the last reset and is used as the tie-break.
type Hit struct {
	ID      string
	Content string
	Type    string
	Meta    map[string]string
	Score   float32
	Seq     int
}

// Index stores vectors and answers nearest-neighbor queries.
// It supports only whole-index replacement: Reset, then Add each item.
type Index interface {
	// Reset deletes every item and recreates the empty index.
	Reset(ctx context.Context) error

	// Add inserts one item with a precomputed vector.
	Add(ctx context.Context, item Item) error

	// Query returns up to k items nearest to vector by cosine similarity,
	// sorted by descending score with ties in insertion order.
	Query(ctx context.Context, vector []float32, k int) ([]Hit, error)

	// Count returns the number of items in the index.
	Count() int
}
