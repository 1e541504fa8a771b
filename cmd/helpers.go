package cmd

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/db"
	"github.com/ziadkadry99/auto-test/internal/embeddings"
	"github.com/ziadkadry99/auto-test/internal/history"
	"github.com/ziadkadry99/auto-test/internal/llm"
	"github.com/ziadkadry99/auto-test/internal/logger"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
	"github.com/ziadkadry99/auto-test/internal/vectordb"
)

// ollamaEmbeddingDimensions lists vector sizes of common local embedding
// models. Unlisted models are not size-checked.
var ollamaEmbeddingDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// This is the shared version used by the ingest, query and generate commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, ollamaEmbeddingDimensions[strings.TrimSuffix(cfg.EmbeddingModel, ":latest")], cfg.EmbeddingBaseURL), nil
	default:
		// Anthropic has no embeddings API, so it shares the OpenAI path.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for embeddings (embedding provider %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(embeddings.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: cfg.EmbeddingBaseURL,
			Model:   embeddings.OpenAIModel(cfg.EmbeddingModel),
		}), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// createRetrieverFromConfig builds the configured retrieval strategy. The
// cascade strategy opens the vector index; the boosted one reads the
// article cache.
func createRetrieverFromConfig(cfg *config.Config, embedder embeddings.Embedder, log *zap.Logger) (retrieval.Retriever, error) {
	var index vectordb.Index
	if cfg.Retrieval.Strategy != config.StrategyBoosted {
		store, err := vectordb.NewChromemStore(cfg.IndexDir, embedder, log)
		if err != nil {
			return nil, fmt.Errorf("opening vector index: %w", err)
		}
		if store.Count() == 0 {
			log.Warn("Vector index is empty, run `autotest ingest` first", zap.String("dir", cfg.IndexDir))
		}
		index = store
	}
	return retrieval.New(cfg.Retrieval, index, cfg.ArticlesFile, embedder, log)
}

// openHistory opens the generation history store. The returned func closes it.
func openHistory(cfg *config.Config) (*history.Store, func(), error) {
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	return history.NewStore(database), func() { database.Close() }, nil
}

// newLogger builds the command logger; --verbose forces debug output.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logger.NewLogger(cfg.Log.Env, level)
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `autotest init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
