package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "AUTOTEST_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (AUTOTEST_*). A double underscore
// addresses a nested key: AUTOTEST_RETRIEVAL__MIN_SCORE -> retrieval.min_score.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic: true,
	ProviderOpenAI:    true,
	ProviderOllama:    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of anthropic, openai, ollama", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.EmbeddingProvider != "" && c.EmbeddingProvider != ProviderOpenAI && c.EmbeddingProvider != ProviderOllama {
		return fmt.Errorf("invalid embedding_provider %q: must be openai or ollama", c.EmbeddingProvider)
	}
	if c.KnowledgeDir == "" {
		return fmt.Errorf("knowledge_dir is required")
	}
	if c.IndexDir == "" {
		return fmt.Errorf("index_dir is required")
	}

	r := c.Retrieval
	if r.Strategy != StrategyCascade && r.Strategy != StrategyBoosted {
		return fmt.Errorf("invalid retrieval.strategy %q: must be cascade or boosted", r.Strategy)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return fmt.Errorf("retrieval.min_score must be within [0,1]")
	}
	if r.FallbackScore < 0 || r.FallbackScore > 1 {
		return fmt.Errorf("retrieval.fallback_score must be within [0,1]")
	}
	if r.KeywordBoost < 0 || r.TestPatternBoost < 0 {
		return fmt.Errorf("retrieval boosts must be non-negative")
	}
	if c.Intervention.DedupPrefix < 0 {
		return fmt.Errorf("intervention.dedup_prefix must be non-negative")
	}

	return nil
}

// BaseURL resolves an environment key to its configured base URL.
// Only the fixed environment keys are recognized; anything else resolves to "".
func (c *Config) BaseURL(environment string) string {
	switch environment {
	case EnvTest, EnvQA, EnvStaging, EnvProd, EnvLocal:
		return c.Environments[environment]
	default:
		return ""
	}
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
