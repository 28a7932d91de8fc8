package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
	"github.com/draftcommit/draftcommit/internal/pkg/git"
)

const geminiTestKey = "AIzaSyTestKey0123456789abcdefghijklmn"

func newGeminiTestProvider(t *testing.T, handler http.HandlerFunc) (*GeminiProvider, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewGeminiProvider(ProviderConfig{
		APIKey:   geminiTestKey,
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	return provider, server
}

func TestGeminiGenerateSuccess(t *testing.T) {
	var gotPath string
	var gotKey string
	var gotBody geminiRequest

	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Role:  "model",
					Parts: []geminiPart{{Text: "Add request logging middleware"}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	result, err := provider.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "Add request logging middleware", result.Text)
	assert.Equal(t, "gemini", result.Provider)

	assert.Equal(t, "/models/"+DefaultGeminiModel+":generateContent", gotPath)
	assert.Equal(t, geminiTestKey, gotKey, "key travels as a query parameter")
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "diff --git a/main.go")
	require.NotNil(t, gotBody.SystemInstruction)
}

func TestGeminiGenerateStructuredError(t *testing.T) {
	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(geminiResponse{
			Error: &geminiAPIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"},
		})
	})

	_, err := provider.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrProviderFailed, appErr.Code)
	assert.True(t, appErr.IsRecoverable())
}

func TestGeminiGenerateAuthError(t *testing.T) {
	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(geminiResponse{
			Error: &geminiAPIError{Code: 403, Message: "key invalid", Status: "PERMISSION_DENIED"},
		})
	})

	_, err := provider.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrAuthenticationFailed, appErr.Code)
}

func TestGeminiGenerateDiffContainingErrorWordIsNotAnError(t *testing.T) {
	// The response body quotes a diff full of the word "error"; only the
	// structured error object may fail the call.
	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Parts: []geminiPart{{Text: `Handle error paths in errorHandler ("error": "error")`}},
				},
			}},
		})
	})

	result, err := provider.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Contains(t, result.Text, "errorHandler")
}

func TestGeminiGenerateMissingCandidates(t *testing.T) {
	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	})

	_, err := provider.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrExtractionFailed, appErr.Code)
}

func TestGeminiGenerateInvalidJSON(t *testing.T) {
	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := provider.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrExtractionFailed, appErr.Code)
}

func TestGeminiGenerateNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	provider, err := NewGeminiProvider(ProviderConfig{
		APIKey:   geminiTestKey,
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrNetworkError, appErr.Code)
	assert.True(t, appErr.IsRecoverable())
}

func TestGeminiGenerateEmptyDiff(t *testing.T) {
	provider, _ := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request may leave the process for an empty diff")
	})

	_, err := provider.Generate(context.Background(), &GenerateRequest{Diff: &git.Diff{}})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrEmptyDiff, appErr.Code)
}

func TestNewGeminiProviderValidation(t *testing.T) {
	_, err := NewGeminiProvider(ProviderConfig{})
	require.Error(t, err)

	_, err = NewGeminiProvider(ProviderConfig{APIKey: "short"})
	require.Error(t, err)

	p, err := NewGeminiProvider(ProviderConfig{APIKey: geminiTestKey})
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, p.config.Model)
	assert.Equal(t, DefaultGeminiEndpoint, p.config.Endpoint)
	assert.Equal(t, float32(DefaultTemperature), p.config.Temperature)
}
