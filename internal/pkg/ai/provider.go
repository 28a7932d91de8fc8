// Package ai provides the text-generation providers and the fallback
// chain used to draft commit messages.
package ai

import (
	"context"
	"time"

	"github.com/draftcommit/draftcommit/internal/pkg/git"
)

const (
	// DefaultTemperature is the default temperature for generation.
	DefaultTemperature = 0.2

	// DefaultMaxTokens is the default max tokens for generation.
	DefaultMaxTokens = 500

	// DefaultTimeout bounds each provider call. A hung request maps to a
	// network-failure error instead of blocking the run.
	DefaultTimeout = 30 * time.Second
)

// GenerateRequest contains the data needed to generate a commit message.
type GenerateRequest struct {
	Diff         *git.Diff
	CustomPrompt string
}

// GenerateResponse contains the text extracted from one provider response.
type GenerateResponse struct {
	Text     string
	Provider string
}

// ProviderConfig contains configuration for one provider.
type ProviderConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float32
	MaxTokens   int
}

// Provider defines the interface for text-generation providers.
// Implementations make exactly one request per Generate call; retries and
// provider fallback are the chain's concern, never the provider's.
type Provider interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
	ValidateConfig(config ProviderConfig) error
}
