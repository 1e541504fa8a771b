package indexer

import (
	"time"

	"github.com/ziadkadry99/auto-test/internal/retrieval"
)

// Failure records a document that could not be embedded or stored.
type Failure struct {
	ID  string
	Err error
}

// Result summarizes one ingestion run.
type Result struct {
	Indexed  int
	Failures []Failure
	// Articles is the flat pre-embedded list for the boosted retrieval
	// strategy, in walk order.
	Articles []retrieval.Article
	Duration time.Duration
}

// ProgressFunc is called after each document is processed.
type ProgressFunc func(processed int, total int, currentID string)
