package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Retrieval.Strategy != StrategyCascade {
		t.Errorf("expected default strategy %q, got %q", StrategyCascade, cfg.Retrieval.Strategy)
	}
	if cfg.Retrieval.MinScore != 0.3 {
		t.Errorf("expected default min_score 0.3, got %v", cfg.Retrieval.MinScore)
	}
	if cfg.Retrieval.FallbackScore != 0.1 {
		t.Errorf("expected default fallback_score 0.1, got %v", cfg.Retrieval.FallbackScore)
	}
	if cfg.Retrieval.KeywordBoost != 0.15 || cfg.Retrieval.TestPatternBoost != 0.2 {
		t.Errorf("unexpected default boosts: %v / %v", cfg.Retrieval.KeywordBoost, cfg.Retrieval.TestPatternBoost)
	}
	if cfg.Intervention.DedupPrefix != 40 {
		t.Errorf("expected default dedup_prefix 40, got %d", cfg.Intervention.DedupPrefix)
	}
}

func TestDefaultConfigDoesNotShareEnvironments(t *testing.T) {
	a := DefaultConfig()
	a.Environments[EnvQA] = "https://changed.example.com"
	if DefaultEnvironments[EnvQA] == "https://changed.example.com" {
		t.Error("DefaultConfig leaked the package-level environment map")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.autotest.yml")

	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.Model = "claude-sonnet-4-5-20250929"
	original.Retrieval.Strategy = StrategyBoosted
	original.Retrieval.TopK = 7
	original.Environments[EnvStaging] = "https://stage.internal"
	original.Recorder.Timeout = 5 * time.Minute

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Retrieval.Strategy != StrategyBoosted {
		t.Errorf("strategy: got %q, want %q", loaded.Retrieval.Strategy, StrategyBoosted)
	}
	if loaded.Retrieval.TopK != 7 {
		t.Errorf("top_k: got %d, want 7", loaded.Retrieval.TopK)
	}
	if loaded.BaseURL(EnvStaging) != "https://stage.internal" {
		t.Errorf("staging url: got %q", loaded.BaseURL(EnvStaging))
	}
	if loaded.Recorder.Timeout != 5*time.Minute {
		t.Errorf("recorder timeout: got %v, want 5m", loaded.Recorder.Timeout)
	}
	if len(loaded.Extensions) != len(DefaultExtensions) {
		t.Errorf("extensions length: got %d, want %d", len(loaded.Extensions), len(DefaultExtensions))
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("AUTOTEST_PROVIDER", "anthropic")
	t.Setenv("AUTOTEST_RETRIEVAL__MIN_SCORE", "0.45")
	t.Setenv("AUTOTEST_ENVIRONMENTS__QA", "https://qa.override.test")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderAnthropic {
		t.Errorf("provider override failed: got %q", loaded.Provider)
	}
	if loaded.Retrieval.MinScore != 0.45 {
		t.Errorf("min_score override failed: got %v", loaded.Retrieval.MinScore)
	}
	if loaded.BaseURL(EnvQA) != "https://qa.override.test" {
		t.Errorf("qa override failed: got %q", loaded.BaseURL(EnvQA))
	}
	if loaded.BaseURL(EnvTest) != DefaultEnvironments[EnvTest] {
		t.Errorf("unrelated environment changed: got %q", loaded.BaseURL(EnvTest))
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty provider", func(c *Config) { c.Provider = "" }, true},
		{"invalid provider", func(c *Config) { c.Provider = "bard" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"google embeddings", func(c *Config) { c.EmbeddingProvider = "google" }, true},
		{"empty knowledge dir", func(c *Config) { c.KnowledgeDir = "" }, true},
		{"empty index dir", func(c *Config) { c.IndexDir = "" }, true},
		{"bad strategy", func(c *Config) { c.Retrieval.Strategy = "bm25" }, true},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }, true},
		{"min_score above one", func(c *Config) { c.Retrieval.MinScore = 1.5 }, true},
		{"negative fallback", func(c *Config) { c.Retrieval.FallbackScore = -0.1 }, true},
		{"negative boost", func(c *Config) { c.Retrieval.KeywordBoost = -1 }, true},
		{"negative dedup", func(c *Config) { c.Intervention.DedupPrefix = -1 }, true},
		{"boosted strategy", func(c *Config) { c.Retrieval.Strategy = StrategyBoosted }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Environments["sandbox"] = "https://sandbox.example.com"

	tests := []struct {
		env  string
		want string
	}{
		{EnvTest, DefaultEnvironments[EnvTest]},
		{EnvQA, DefaultEnvironments[EnvQA]},
		{EnvStaging, DefaultEnvironments[EnvStaging]},
		{EnvProd, DefaultEnvironments[EnvProd]},
		{EnvLocal, DefaultEnvironments[EnvLocal]},
		{"sandbox", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cfg.BaseURL(tt.env); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		if got := APIKeyEnvVar(tt.provider); got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestValidateOptionalURL(t *testing.T) {
	if err := validateOptionalURL(""); err != nil {
		t.Errorf("empty should be valid: %v", err)
	}
	if err := validateOptionalURL("https://qa.example.com"); err != nil {
		t.Errorf("absolute URL should be valid: %v", err)
	}
	if err := validateOptionalURL("qa.example.com"); err == nil {
		t.Error("expected error for URL without scheme")
	}
}
