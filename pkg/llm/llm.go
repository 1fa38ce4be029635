// Package llm provides language model backends behind a single Completer capability,
// prompts for draft analysis and a tolerant parser for model responses.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/trendposter/pkg/config"
)

// Completer sends a prompt to a language model and returns raw response text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// supported providers, in auto-detection priority order
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

var providerPriority = []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOllama}

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOpenAI:    "gpt-4o",
	ProviderGemini:    "gemini-2.0-flash",
	ProviderOllama:    "llama3.2",
}

const (
	geminiEndpoint   = "https://generativelanguage.googleapis.com/v1beta/openai/"
	ollamaURL        = "http://localhost:11434"
	defaultTimeout   = 60 * time.Second
	ollamaTimeout    = 120 * time.Second
	defaultMaxTokens = 1024
)

// Resolve picks the provider and fills model, key and endpoint. An explicit provider must have
// its key configured, an empty provider is detected from whichever key or ollama url is present.
func Resolve(cfg config.LLMConfig) (config.LLMConfig, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if cfg.Provider == "" {
		for _, p := range providerPriority {
			if p == ProviderOllama && cfg.OllamaURL != "" || providerKey(cfg, p) != "" {
				cfg.Provider = p
				break
			}
		}
		if cfg.Provider == "" {
			return cfg, fmt.Errorf("no llm provider configured, set one of anthropic_api_key, openai_api_key, gemini_api_key or ollama_url")
		}
	}

	switch cfg.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		if cfg.APIKey == "" {
			cfg.APIKey = providerKey(cfg, cfg.Provider)
		}
		if cfg.APIKey == "" {
			return cfg, fmt.Errorf("llm provider %s requires an api key", cfg.Provider)
		}
	case ProviderOllama:
		if cfg.Endpoint == "" {
			cfg.Endpoint = cfg.OllamaURL
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = ollamaURL
		}
	default:
		return cfg, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	if cfg.Provider == ProviderGemini && cfg.Endpoint == "" {
		cfg.Endpoint = geminiEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
		if cfg.Provider == ProviderOllama {
			cfg.Timeout = ollamaTimeout
		}
	}
	return cfg, nil
}

// New makes a Completer for the configured or detected provider
func New(cfg config.LLMConfig) (Completer, config.LLMConfig, error) {
	resolved, err := Resolve(cfg)
	if err != nil {
		return nil, resolved, err
	}
	if resolved.Provider == ProviderAnthropic {
		return NewAnthropic(resolved), resolved, nil
	}
	return NewOpenAI(resolved), resolved, nil
}

func providerKey(cfg config.LLMConfig, provider string) string {
	switch provider {
	case ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case ProviderOpenAI:
		return cfg.OpenAIAPIKey
	case ProviderGemini:
		return cfg.GeminiAPIKey
	}
	return ""
}
