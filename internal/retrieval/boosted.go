package retrieval

import (
	"context"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/embeddings"
	"github.com/ziadkadry99/auto-test/internal/knowledge"
)

// executableTestPattern recognises text that already looks like a runnable
// Playwright test.
var executableTestPattern = regexp.MustCompile(
	`(?s)\btest(?:\.describe)?\s*\(\s*['"` + "`" + `].*?async\s*\(\s*\{\s*page\b|\bawait\s+page\.`,
)

// Article is one entry of the flat, pre-embedded article list.
type Article struct {
	ID        string                 `json:"id"`
	Type      knowledge.DocumentType `json:"type"`
	Title     string                 `json:"title,omitempty"`
	Text      string                 `json:"text"`
	Embedding []float32              `json:"embedding"`
}

// BoostOptions configures the keyword-boosted ranking.
type BoostOptions struct {
	KeywordBoost     float64
	TestPatternBoost float64
	Keywords         []string
}

// Boosted ranks a flat article list by cosine similarity plus fixed
// additive boosts. Boosted scores are for ranking only.
type Boosted struct {
	articles []Article
	embedder embeddings.Embedder
	opts     BoostOptions
	logger   *zap.Logger
}

// NewBoosted creates a Boosted retriever over articles.
func NewBoosted(articles []Article, embedder embeddings.Embedder, opts BoostOptions, logger *zap.Logger) *Boosted {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Boosted{articles: articles, embedder: embedder, opts: opts, logger: logger}
}

// Retrieve runs SemanticSearch.
func (b *Boosted) Retrieve(ctx context.Context, query string, topK int) []Context {
	return b.SemanticSearch(ctx, query, topK)
}

// SemanticSearch returns the topN articles by boosted score.
func (b *Boosted) SemanticSearch(ctx context.Context, query string, topN int) []Context {
	if strings.TrimSpace(query) == "" || len(b.articles) == 0 || topN <= 0 {
		return nil
	}

	qvec, err := b.embedder.Embed(ctx, query)
	if err != nil {
		b.logger.Warn("Retrieval failed: could not embed query", zap.Error(err))
		return nil
	}

	scored := make([]Context, 0, len(b.articles))
	for _, a := range b.articles {
		sim := Cosine(qvec, a.Embedding)
		scored = append(scored, Context{
			ID:         a.ID,
			Content:    a.Text,
			Type:       a.Type,
			Score:      sim + b.boost(a.Text),
			Similarity: sim,
			Boosted:    true,
			Metadata:   map[string]string{"title": a.Title},
		})
	}

	sortByScore(scored)
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// boost is the additive bonus for text: KeywordBoost per keyword present
// plus TestPatternBoost if the text looks like an executable test.
func (b *Boosted) boost(text string) float64 {
	lower := strings.ToLower(text)
	var total float64
	for _, kw := range b.opts.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			total += b.opts.KeywordBoost
		}
	}
	if executableTestPattern.MatchString(text) {
		total += b.opts.TestPatternBoost
	}
	return total
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
