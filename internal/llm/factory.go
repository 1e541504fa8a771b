package llm

import (
	"fmt"
	"os"
)

// Environment variables read by NewProvider.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvOpenAIBaseURL   = "OPENAI_BASE_URL"
	EnvOllamaHost      = "OLLAMA_HOST"
)

const defaultOllamaHost = "http://localhost:11434"

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "anthropic", "openai", "ollama". OPENAI_BASE_URL points
// the openai provider at any OpenAI-compatible endpoint.
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "anthropic":
		apiKey := os.Getenv(EnvAnthropicAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", EnvAnthropicAPIKey)
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "openai":
		apiKey := os.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", EnvOpenAIAPIKey)
		}
		return NewOpenAIProvider(apiKey, model, os.Getenv(EnvOpenAIBaseURL)), nil

	case "ollama":
		host := os.Getenv(EnvOllamaHost)
		if host == "" {
			host = defaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
