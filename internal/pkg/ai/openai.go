package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is the default model for OpenAI.
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	client         *openai.Client
	config         ProviderConfig
	promptTemplate *PromptTemplate
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config ProviderConfig) (*OpenAIProvider, error) {
	if err := validateOpenAIConfig(config); err != nil {
		return nil, err
	}

	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	clientConfig := openai.DefaultConfig(config.APIKey)

	// Support custom endpoints (for OpenAI-compatible APIs)
	if config.Endpoint != "" {
		clientConfig.BaseURL = config.Endpoint
	}

	clientConfig.HTTPClient = &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClientWithConfig(clientConfig)

	return &OpenAIProvider{
		client:         client,
		config:         config,
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// validateOpenAIConfig validates the OpenAI provider configuration.
func validateOpenAIConfig(config ProviderConfig) error {
	if config.APIKey == "" {
		return errors.New("API key is required for OpenAI provider")
	}

	if len(config.APIKey) < 20 {
		return errors.New("API key appears to be invalid (too short)")
	}

	return nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ValidateConfig validates the provider configuration.
func (p *OpenAIProvider) ValidateConfig(config ProviderConfig) error {
	return validateOpenAIConfig(config)
}

// Generate sends the prompt to OpenAI and extracts the generated text.
// Exactly one request is made; failures surface to the chain unretried.
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if (req.Diff == nil || req.Diff.IsEmpty()) && req.CustomPrompt == "" {
		return nil, apperrors.NewEmptyDiffError()
	}

	userPrompt, err := p.promptTemplate.RenderUserPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: p.promptTemplate.GetSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	apperrors.LogAPIRequest(p.Name(), p.config.Endpoint, p.config.Model, len(userPrompt))
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	responseLen := 0
	if len(resp.Choices) > 0 {
		responseLen = len(resp.Choices[0].Message.Content)
	}
	apperrors.LogAPIResponse(p.Name(), http.StatusOK, responseLen, time.Since(startTime))

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, apperrors.NewExtractionError(p.Name())
	}

	return &GenerateResponse{
		Text:     resp.Choices[0].Message.Content,
		Provider: p.Name(),
	}, nil
}

// wrapOpenAIError maps a go-openai error onto the error taxonomy. The
// *openai.APIError type carries the structured error envelope, so no text
// containment heuristics are needed.
func wrapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewAuthenticationError("OpenAI")
		default:
			return apperrors.NewProviderError("OpenAI",
				fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}

	return apperrors.NewNetworkError("OpenAI", err)
}

// SetPromptTemplate sets a custom prompt template.
func (p *OpenAIProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}
