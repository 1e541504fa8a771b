package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/embeddings"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

// Retriever returns the contexts most relevant to a query. Implementations
// never fail: errors are logged and yield an empty slice.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []Context
}

var (
	_ Retriever = (*Cascade)(nil)
	_ Retriever = (*Boosted)(nil)
)

// New builds the retriever selected by cfg.Strategy. The cascade strategy
// needs index; the boosted strategy reads the article cache at articlesPath.
func New(cfg config.RetrievalConfig, index vectordb.Index, articlesPath string, embedder embeddings.Embedder, logger *zap.Logger) (Retriever, error) {
	switch cfg.Strategy {
	case config.StrategyCascade, "":
		if index == nil {
			return nil, fmt.Errorf("cascade retrieval requires a vector index")
		}
		return NewCascade(index, embedder, CascadeOptions{
			MinScore:      cfg.MinScore,
			FallbackScore: cfg.FallbackScore,
		}, logger), nil
	case config.StrategyBoosted:
		articles, err := LoadArticles(articlesPath)
		if err != nil {
			return nil, err
		}
		return NewBoosted(articles, embedder, BoostOptions{
			KeywordBoost:     cfg.KeywordBoost,
			TestPatternBoost: cfg.TestPatternBoost,
			Keywords:         cfg.Keywords,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown retrieval strategy %q", cfg.Strategy)
	}
}
