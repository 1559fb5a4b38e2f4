// Package llm selects the chat client for a provider name.
package llm

import (
	"fmt"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/llm/ollama"
	"agent-bridge/internal/infrastructure/llm/openai"
)

type Settings struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string
	Logger        output.LoggerPort
}

// NewProvider returns entity.ErrMissingAPIKey for openai without a key and
// wraps entity.ErrUnsupportedProvider for unknown names.
func NewProvider(provider entity.Provider, model string, s Settings) (output.LLMPort, error) {
	switch provider {
	case entity.ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return nil, entity.ErrMissingAPIKey
		}
		cfg := openai.DefaultConfig(s.OpenAIAPIKey, model)
		cfg.BaseURL = s.OpenAIBaseURL
		cfg.Logger = named(s.Logger, "openai")
		adapter, err := openai.NewOpenAIAdapter(cfg)
		if err != nil {
			return nil, err
		}
		return adapter, nil

	case entity.ProviderOllama:
		cfg := ollama.DefaultConfig(model)
		if s.OllamaBaseURL != "" {
			cfg.ServerURL = s.OllamaBaseURL
		}
		cfg.Logger = named(s.Logger, "ollama")
		adapter, err := ollama.NewOllamaAdapter(cfg)
		if err != nil {
			return nil, err
		}
		return adapter, nil

	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedProvider, provider)
	}
}

func named(logger output.LoggerPort, component string) output.LoggerPort {
	if logger == nil {
		return nil
	}
	return logger.Named(component)
}
