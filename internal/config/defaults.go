package config

import "time"

// DefaultExtensions are the knowledge-base file patterns accepted by the loader.
var DefaultExtensions = []string{
	"**/*.md",
	"**/*.markdown",
	"**/*.txt",
	"**/*.js",
	"**/*.ts",
	"**/*.json",
	"**/*.yaml",
	"**/*.yml",
}

// DefaultKeywords is the workflow/automation vocabulary used by the boosted strategy.
var DefaultKeywords = []string{
	"workflow",
	"login",
	"navigate",
	"click",
	"fill",
	"submit",
	"assert",
	"expect",
	"automation",
	"playwright",
	"selector",
	"locator",
}

// DefaultEnvironments maps environment keys to base URLs.
var DefaultEnvironments = map[string]string{
	EnvTest:    "https://test.example.com",
	EnvQA:      "https://qa.example.com",
	EnvStaging: "https://staging.example.com",
	EnvProd:    "https://www.example.com",
	EnvLocal:   "http://localhost:3000",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	envs := make(map[string]string, len(DefaultEnvironments))
	for k, v := range DefaultEnvironments {
		envs[k] = v
	}

	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		KnowledgeDir:      "knowledge",
		Extensions:        append([]string(nil), DefaultExtensions...),
		IndexDir:          ".autotest/index",
		ArticlesFile:      ".autotest/articles.json",
		OutputDir:         "tests/generated",
		HistoryDB:         ".autotest/history.db",
		Environments:      envs,
		Log: LogConfig{
			Env:   "dev",
			Level: "info",
		},
		Retrieval: RetrievalConfig{
			Strategy:         StrategyCascade,
			TopK:             10,
			MinScore:         0.3,
			FallbackScore:    0.1,
			KeywordBoost:     0.15,
			TestPatternBoost: 0.2,
			Keywords:         append([]string(nil), DefaultKeywords...),
		},
		Recorder: RecorderConfig{
			Command: "npx",
			Args:    []string{"playwright", "codegen", "--target=playwright-test", "-o", "{output}", "{url}"},
			Timeout: 30 * time.Minute,
		},
		Intervention: InterventionConfig{
			MappingLog:     "workflows/intervention-mapping.md",
			SelectorsLog:   "selectors/discovered-selectors.md",
			TestDataLog:    "fixtures/test-data.md",
			CardMappingLog: "fixtures/card-test-mapping.md",
			DedupPrefix:    40,
		},
	}
}
