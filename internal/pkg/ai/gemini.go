package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

const (
	// DefaultGeminiModel is the default model for Gemini.
	DefaultGeminiModel = "gemini-2.0-flash"

	// DefaultGeminiEndpoint is the base URL of the Gemini REST API.
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiProvider implements the Provider interface for the Gemini REST API.
// Authentication uses the API key as a query parameter rather than a
// bearer header.
type GeminiProvider struct {
	config         ProviderConfig
	httpClient     *http.Client
	promptTemplate *PromptTemplate
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(config ProviderConfig) (*GeminiProvider, error) {
	if err := validateGeminiConfig(config); err != nil {
		return nil, err
	}

	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultGeminiEndpoint
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	return &GeminiProvider{
		config:         config,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		promptTemplate: NewPromptTemplate(),
	}, nil
}

// validateGeminiConfig validates the Gemini provider configuration.
func validateGeminiConfig(config ProviderConfig) error {
	if config.APIKey == "" {
		return errors.New("API key is required for Gemini provider")
	}

	if len(config.APIKey) < 20 {
		return errors.New("API key appears to be invalid (too short)")
	}

	return nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// ValidateConfig validates the provider configuration.
func (p *GeminiProvider) ValidateConfig(config ProviderConfig) error {
	return validateGeminiConfig(config)
}

// Gemini wire format.

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse is the tagged response envelope. Exactly one of Error or
// Candidates is expected; deciding on these fields rather than on body
// text keeps error detection immune to diffs that contain the word
// "error" themselves.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiAPIError   `json:"error"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate sends the prompt to Gemini and extracts the generated text.
// Exactly one request is made; failures surface to the chain unretried.
func (p *GeminiProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
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

	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: userPrompt}},
			},
		},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: p.promptTemplate.GetSystemPrompt()}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.config.Temperature,
			MaxOutputTokens: p.config.MaxTokens,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.config.Endpoint, p.config.Model, url.QueryEscape(p.config.APIKey))

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	apperrors.LogAPIRequest(p.Name(), p.config.Endpoint, p.config.Model, len(userPrompt))
	startTime := time.Now()

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError(err)
		}
		return nil, apperrors.NewNetworkError("Gemini", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("Gemini", err)
	}

	apperrors.LogAPIResponse(p.Name(), resp.StatusCode, len(raw), time.Since(startTime))

	var envelope geminiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// An undecodable body is its own error kind, never a
		// containment-heuristic fallthrough.
		return nil, apperrors.Wrap(err, apperrors.ErrExtractionFailed, "Gemini response was not valid JSON")
	}

	if envelope.Error != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, apperrors.NewAuthenticationError("Gemini")
		default:
			return nil, apperrors.NewProviderError("Gemini",
				fmt.Sprintf("status %d (%s): %s", envelope.Error.Code, envelope.Error.Status, envelope.Error.Message))
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewProviderError("Gemini", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	if len(envelope.Candidates) == 0 ||
		len(envelope.Candidates[0].Content.Parts) == 0 ||
		envelope.Candidates[0].Content.Parts[0].Text == "" {
		return nil, apperrors.NewExtractionError(p.Name())
	}

	return &GenerateResponse{
		Text:     envelope.Candidates[0].Content.Parts[0].Text,
		Provider: p.Name(),
	}, nil
}

// SetPromptTemplate sets a custom prompt template.
func (p *GeminiProvider) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.promptTemplate = pt
	}
}
