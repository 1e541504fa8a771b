package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/manifoldco/promptui"
)

// wizardEnvironments is the order in which the wizard asks for base URLs.
var wizardEnvironments = []string{EnvTest, EnvQA, EnvStaging, EnvProd, EnvLocal}

// RunWizard runs an interactive configuration wizard, saves the result
// to path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to autotest! Let's configure test generation for your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider for code generation",
		Items: []string{"openai", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = defaultModelFor(cfg.Provider)
	if cfg.Provider == ProviderOllama {
		cfg.EmbeddingProvider = ProviderOllama
		cfg.EmbeddingModel = "nomic-embed-text"
	}

	// 2. Retrieval strategy.
	strategyPrompt := promptui.Select{
		Label: "Select retrieval strategy",
		Items: []string{
			"cascade: typed knowledge base with threshold fallback",
			"boosted: flat article list with keyword boosts",
		},
	}
	strategyIdx, _, err := strategyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("strategy selection: %w", err)
	}
	cfg.Retrieval.Strategy = []Strategy{StrategyCascade, StrategyBoosted}[strategyIdx]

	// 3. Knowledge base directory.
	kbPrompt := promptui.Prompt{
		Label:   "Knowledge base directory",
		Default: cfg.KnowledgeDir,
	}
	if cfg.KnowledgeDir, err = kbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("knowledge dir: %w", err)
	}

	// 4. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for generated tests",
		Default: cfg.OutputDir,
	}
	if cfg.OutputDir, err = outputPrompt.Run(); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 5. Base URL per environment.
	for _, env := range wizardEnvironments {
		p := promptui.Prompt{
			Label:    fmt.Sprintf("Base URL for %s (blank to leave unset)", env),
			Default:  cfg.Environments[env],
			Validate: validateOptionalURL,
		}
		u, err := p.Run()
		if err != nil {
			return nil, fmt.Errorf("%s base url: %w", env, err)
		}
		if u == "" {
			delete(cfg.Environments, env)
			continue
		}
		cfg.Environments[env] = u
	}

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running autotest generate.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func defaultModelFor(p ProviderType) string {
	switch p {
	case ProviderAnthropic:
		return "claude-sonnet-4-5-20250929"
	case ProviderOllama:
		return "llama3"
	default:
		return "gpt-4o"
	}
}

func validateOptionalURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", s)
	}
	return nil
}
