package config

import "time"

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Strategy selects how the retrieval engine ranks candidates.
type Strategy string

const (
	// StrategyCascade queries the vector index and applies the score-threshold cascade.
	StrategyCascade Strategy = "cascade"
	// StrategyBoosted ranks the flat article cache by cosine plus keyword boosts.
	StrategyBoosted Strategy = "boosted"
)

// Known environment keys for the base URL mapping.
const (
	EnvTest    = "test"
	EnvQA      = "qa"
	EnvStaging = "staging"
	EnvProd    = "prod"
	EnvLocal   = "local"
)

// Config is the top-level autotest configuration, corresponding to .autotest.yml.
type Config struct {
	Provider          ProviderType       `yaml:"provider" koanf:"provider"`
	Model             string             `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType       `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string             `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingBaseURL  string             `yaml:"embedding_base_url" koanf:"embedding_base_url"`
	KnowledgeDir      string             `yaml:"knowledge_dir" koanf:"knowledge_dir"`
	Extensions        []string           `yaml:"extensions" koanf:"extensions"`
	IndexDir          string             `yaml:"index_dir" koanf:"index_dir"`
	ArticlesFile      string             `yaml:"articles_file" koanf:"articles_file"`
	OutputDir         string             `yaml:"output_dir" koanf:"output_dir"`
	HistoryDB         string             `yaml:"history_db" koanf:"history_db"`
	Environments      map[string]string  `yaml:"environments" koanf:"environments"`
	Log               LogConfig          `yaml:"log" koanf:"log"`
	Retrieval         RetrievalConfig    `yaml:"retrieval" koanf:"retrieval"`
	Recorder          RecorderConfig     `yaml:"recorder" koanf:"recorder"`
	Intervention      InterventionConfig `yaml:"intervention" koanf:"intervention"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Env   string `yaml:"env" koanf:"env"`
	Level string `yaml:"level" koanf:"level"`
}

// RetrievalConfig holds the tunable retrieval constants.
type RetrievalConfig struct {
	Strategy         Strategy `yaml:"strategy" koanf:"strategy"`
	TopK             int      `yaml:"top_k" koanf:"top_k"`
	MinScore         float64  `yaml:"min_score" koanf:"min_score"`
	FallbackScore    float64  `yaml:"fallback_score" koanf:"fallback_score"`
	KeywordBoost     float64  `yaml:"keyword_boost" koanf:"keyword_boost"`
	TestPatternBoost float64  `yaml:"test_pattern_boost" koanf:"test_pattern_boost"`
	Keywords         []string `yaml:"keywords" koanf:"keywords"`
}

// RecorderConfig describes the browser recorder subprocess.
// The arguments may reference {url} and {output}.
type RecorderConfig struct {
	Command string        `yaml:"command" koanf:"command"`
	Args    []string      `yaml:"args" koanf:"args"`
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// InterventionConfig holds the knowledge-log locations, relative to the knowledge dir.
type InterventionConfig struct {
	MappingLog     string `yaml:"mapping_log" koanf:"mapping_log"`
	SelectorsLog   string `yaml:"selectors_log" koanf:"selectors_log"`
	TestDataLog    string `yaml:"test_data_log" koanf:"test_data_log"`
	CardMappingLog string `yaml:"card_mapping_log" koanf:"card_mapping_log"`
	DedupPrefix    int    `yaml:"dedup_prefix" koanf:"dedup_prefix"`
}
