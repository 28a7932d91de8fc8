package ai

import (
	"fmt"

	"github.com/draftcommit/draftcommit/internal/pkg/config"
)

// ProviderName constants for the supported providers.
const (
	ProviderNameGemini = "gemini"
	ProviderNameOpenAI = "openai"
)

// NewProvider creates a single provider by name.
func NewProvider(name string, cfg ProviderConfig) (Provider, error) {
	switch name {
	case ProviderNameGemini, "":
		return NewGeminiProvider(cfg)

	case ProviderNameOpenAI:
		return NewOpenAIProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

// NewChainFromResolution builds the fallback chain out of a credential
// resolution and the provider settings. The resolved provider becomes the
// chain head; the other provider joins only when its key was seen.
func NewChainFromResolution(res *config.Resolution, providers config.ProvidersConfig) (*Chain, error) {
	if res == nil {
		return nil, fmt.Errorf("credential resolution is required")
	}

	preferred, err := NewProvider(res.Provider, providerConfig(res.Provider, res.Credentials, providers))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", res.Provider, err)
	}

	var fallback Provider
	if name, ok := res.Fallback(); ok {
		fallback, err = NewProvider(name, providerConfig(name, res.Credentials, providers))
		if err != nil {
			// A malformed fallback credential should not block the
			// preferred provider; the chain just runs without it.
			fallback = nil
		}
	}

	return NewChain(preferred, fallback)
}

// providerConfig assembles one provider's settings from the resolved
// credentials and the configured models.
func providerConfig(name string, creds config.Credentials, providers config.ProvidersConfig) ProviderConfig {
	cfg := ProviderConfig{
		APIKey:      creds.Key(name),
		Temperature: providers.Temperature,
		MaxTokens:   providers.MaxTokens,
	}

	switch name {
	case ProviderNameGemini:
		cfg.Model = providers.GeminiModel
	case ProviderNameOpenAI:
		cfg.Model = providers.OpenAIModel
		cfg.Endpoint = providers.Endpoint
	}

	return cfg
}

// ModelFor returns the configured model name for a provider, falling back
// to the provider default.
func ModelFor(name string, providers config.ProvidersConfig) string {
	switch name {
	case ProviderNameGemini:
		if providers.GeminiModel != "" {
			return providers.GeminiModel
		}
		return DefaultGeminiModel
	case ProviderNameOpenAI:
		if providers.OpenAIModel != "" {
			return providers.OpenAIModel
		}
		return DefaultOpenAIModel
	}
	return ""
}
