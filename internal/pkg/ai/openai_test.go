package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
	"github.com/draftcommit/draftcommit/internal/pkg/git"
)

const openaiTestKey = "sk-test-key-0123456789abcdefghij"

func newOpenAITestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewOpenAIProvider(ProviderConfig{
		APIKey:   openaiTestKey,
		Endpoint: server.URL + "/v1",
	})
	require.NoError(t, err)

	return provider
}

func TestOpenAIGenerateSuccess(t *testing.T) {
	var gotAuth string

	provider := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "diff --git a/main.go")

		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: "Add main entry point",
				},
			}},
		})
	})

	result, err := provider.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Add main entry point", result.Text)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "Bearer "+openaiTestKey, gotAuth, "key travels as a bearer header")
}

func TestOpenAIGenerateEmptyChoices(t *testing.T) {
	provider := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	_, err := provider.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrExtractionFailed, appErr.Code)
}

func TestOpenAIGenerateEmptyDiff(t *testing.T) {
	provider := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request may leave the process for an empty diff")
	})

	_, err := provider.Generate(context.Background(), &GenerateRequest{Diff: &git.Diff{}})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrEmptyDiff, appErr.Code)
}

func TestWrapOpenAIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{
			name: "unauthorized maps to authentication failure",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"},
			code: apperrors.ErrAuthenticationFailed,
		},
		{
			name: "server error maps to provider failure",
			err:  &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "boom"},
			code: apperrors.ErrProviderFailed,
		},
		{
			name: "deadline maps to timeout",
			err:  context.DeadlineExceeded,
			code: apperrors.ErrTimeout,
		},
		{
			name: "transport error maps to network failure",
			err:  errors.New("dial tcp: connection refused"),
			code: apperrors.ErrNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapOpenAIError(tt.err)
			appErr := apperrors.GetAppError(wrapped)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.True(t, appErr.IsRecoverable(), "all provider-side failures feed the fallback chain")
		})
	}
}

func TestNewOpenAIProviderValidation(t *testing.T) {
	_, err := NewOpenAIProvider(ProviderConfig{})
	require.Error(t, err)

	_, err = NewOpenAIProvider(ProviderConfig{APIKey: "short"})
	require.Error(t, err)

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: openaiTestKey})
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, p.config.Model)
}
