package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
	"github.com/draftcommit/draftcommit/internal/pkg/git"
)

// stubProvider counts calls and returns a fixed outcome.
type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &GenerateResponse{Text: s.text, Provider: s.name}, nil
}

func (s *stubProvider) Name() string                               { return s.name }
func (s *stubProvider) ValidateConfig(config ProviderConfig) error { return nil }

func testRequest() *GenerateRequest {
	return &GenerateRequest{
		Diff: &git.Diff{Content: "diff --git a/main.go b/main.go\n+func main() {}"},
	}
}

func TestChainPreferredSucceeds(t *testing.T) {
	preferred := &stubProvider{name: "gemini", text: "Add main entry point"}
	fallback := &stubProvider{name: "openai", text: "unused"}

	chain, err := NewChain(preferred, fallback)
	require.NoError(t, err)

	result, err := chain.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, result.Manual)
	assert.Equal(t, "Add main entry point", result.Response.Text)
	assert.Equal(t, "gemini", result.Response.Provider)
	assert.Equal(t, 1, preferred.calls)
	assert.Equal(t, 0, fallback.calls, "fallback must not run when preferred succeeds")
}

func TestChainFallsBackOnRecoverableFailure(t *testing.T) {
	preferred := &stubProvider{name: "gemini", err: apperrors.NewProviderError("Gemini", "status 500")}
	fallback := &stubProvider{name: "openai", text: "Add main entry point"}

	chain, err := NewChain(preferred, fallback)
	require.NoError(t, err)

	result, err := chain.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, result.Manual)
	assert.Equal(t, "openai", result.Response.Provider)
	assert.Equal(t, 1, preferred.calls, "no same-provider retry")
	assert.Equal(t, 1, fallback.calls)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, "gemini", result.Attempts[0].Provider)
}

func TestChainBothFailLandsInManual(t *testing.T) {
	preferred := &stubProvider{name: "gemini", err: apperrors.NewNetworkError("Gemini", errors.New("dial tcp"))}
	fallback := &stubProvider{name: "openai", err: apperrors.NewExtractionError("openai")}

	chain, err := NewChain(preferred, fallback)
	require.NoError(t, err)

	result, err := chain.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, result.Manual)
	assert.Nil(t, result.Response)
	assert.Equal(t, 1, preferred.calls)
	assert.Equal(t, 1, fallback.calls)
	require.Len(t, result.Attempts, 2)
}

func TestChainNoFallbackGoesStraightToManual(t *testing.T) {
	preferred := &stubProvider{name: "gemini", err: apperrors.NewTimeoutError(errors.New("deadline"))}

	chain, err := NewChain(preferred, nil)
	require.NoError(t, err)

	result, err := chain.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, result.Manual)
	assert.Equal(t, 1, preferred.calls)
	require.Len(t, result.Attempts, 1)
}

func TestChainNonRecoverableFailureStops(t *testing.T) {
	preferred := &stubProvider{name: "gemini", err: apperrors.NewEmptyDiffError()}
	fallback := &stubProvider{name: "openai", text: "unused"}

	chain, err := NewChain(preferred, fallback)
	require.NoError(t, err)

	_, err = chain.Generate(context.Background(), testRequest())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrEmptyDiff, appErr.Code)
	assert.Equal(t, 0, fallback.calls, "non-recoverable errors never advance the chain")
}

func TestChainPostProcessorRejectionAdvancesChain(t *testing.T) {
	// The preferred provider answers, but the cleanup strips the answer
	// down to nothing; the chain must treat that as a failed attempt.
	preferred := &stubProvider{name: "gemini", text: "Functions Added:\n- None"}
	fallback := &stubProvider{name: "openai", text: "Add main entry point"}

	chain, err := NewChain(preferred, fallback)
	require.NoError(t, err)
	chain.SetPostProcessor(func(text string) (string, error) {
		if text == "Functions Added:\n- None" {
			return "", apperrors.NewExtractionError("processor")
		}
		return text, nil
	})

	result, err := chain.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, result.Manual)
	assert.Equal(t, "openai", result.Response.Provider)
	require.Len(t, result.Attempts, 1)
}

func TestChainCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	preferred := &stubProvider{name: "gemini", err: apperrors.NewNetworkError("Gemini", context.Canceled)}
	fallback := &stubProvider{name: "openai", text: "unused"}

	chain, err := NewChain(preferred, fallback)
	require.NoError(t, err)

	_, err = chain.Generate(ctx, testRequest())
	require.Error(t, err)
	assert.Equal(t, 0, fallback.calls, "cancellation must not fall through to the next provider")
}

func TestNewChainRequiresPreferred(t *testing.T) {
	_, err := NewChain(nil, &stubProvider{name: "openai"})
	require.Error(t, err)
}
