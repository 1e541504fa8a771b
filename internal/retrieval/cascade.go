package retrieval

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/embeddings"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

// minQueryLength is the shortest query the cascade will embed.
const minQueryLength = 3

// CascadeOptions configures the threshold cascade.
type CascadeOptions struct {
	MinScore      float64
	FallbackScore float64
}

// Cascade retrieves from the vector index and relaxes its score threshold
// until something is found: MinScore, then FallbackScore, then no threshold.
// A non-empty index therefore always yields at least one context.
type Cascade struct {
	index    vectordb.Index
	embedder embeddings.Embedder
	opts     CascadeOptions
	logger   *zap.Logger
}

// NewCascade creates a Cascade over index.
func NewCascade(index vectordb.Index, embedder embeddings.Embedder, opts CascadeOptions, logger *zap.Logger) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cascade{index: index, embedder: embedder, opts: opts, logger: logger}
}

// Retrieve runs Query with the configured MinScore.
func (c *Cascade) Retrieve(ctx context.Context, query string, topK int) []Context {
	return c.Query(ctx, query, topK, c.opts.MinScore)
}

// Query returns up to topK contexts for text, best first. Errors are logged
// and produce an empty result.
func (c *Cascade) Query(ctx context.Context, text string, topK int, minScore float64) []Context {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minQueryLength {
		return nil
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		c.logger.Warn("Retrieval failed: could not embed query", zap.Error(err))
		return nil
	}

	hits, err := c.index.Query(ctx, vec, topK)
	if err != nil {
		c.logger.Warn("Retrieval failed: index query error", zap.Error(err))
		return nil
	}
	if len(hits) == 0 {
		return nil
	}

	selected := filterHits(hits, minScore)
	if len(selected) == 0 {
		c.logger.Debug("No context above min score, retrying with fallback",
			zap.Float64("min_score", minScore), zap.Float64("fallback_score", c.opts.FallbackScore))
		selected = filterHits(hits, c.opts.FallbackScore)
	}
	if len(selected) == 0 {
		c.logger.Debug("No context above fallback score, using unfiltered top results", zap.Int("count", len(hits)))
		selected = hits
	}

	out := make([]Context, len(selected))
	for i, h := range selected {
		out[i] = fromHit(h)
	}
	sortByScore(out)
	return out
}

// filterHits keeps hits scoring at least min. Input order is preserved.
func filterHits(hits []vectordb.Hit, min float64) []vectordb.Hit {
	var out []vectordb.Hit
	for _, h := range hits {
		if float64(h.Score) >= min {
			out = append(out, h)
		}
	}
	return out
}

// sortByScore orders contexts by descending score. Equal scores keep their
// incoming order, which is insertion order for the index and list order for
// articles.
func sortByScore(cs []Context) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Score > cs[j].Score
	})
}
