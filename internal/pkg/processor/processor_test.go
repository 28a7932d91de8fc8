package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

func TestProcessPassesCleanMessageThrough(t *testing.T) {
	p := NewProcessor()

	input := "Add retry logic to uploader\n\nFunctions Added:\n- uploadWithRetry\n- backoffDelay"
	result, err := p.Process(input)
	require.NoError(t, err)
	assert.Equal(t, input, result)
}

func TestProcessStripsPlaceholderSections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "dash placeholder under added",
			input: "Fix typo in README\n\nFunctions Added:\n- None",
			want:  "Fix typo in README",
		},
		{
			name:  "asterisk placeholder under removed",
			input: "Fix typo in README\n\nFunctions Removed:\n* None",
			want:  "Fix typo in README",
		},
		{
			name:  "bare placeholder",
			input: "Fix typo in README\n\nFunctions Added:\nNone",
			want:  "Fix typo in README",
		},
		{
			name:  "case insensitive",
			input: "Fix typo in README\n\nfunctions added:\n- NONE",
			want:  "Fix typo in README",
		},
		{
			name:  "both sections placeholders",
			input: "Update config defaults\n\nFunctions Added:\n- None\n\nFunctions Removed:\n- None",
			want:  "Update config defaults",
		},
		{
			name:  "one real one placeholder",
			input: "Split parser into two passes\n\nFunctions Added:\n- parseHeader\n\nFunctions Removed:\n- None",
			want:  "Split parser into two passes\n\nFunctions Added:\n- parseHeader",
		},
		{
			name:  "adjacent sections without blank line",
			input: "Fix typo in README\n\nFunctions Added:\n- None\nFunctions Removed:\n- None",
			want:  "Fix typo in README",
		},
	}

	p := NewProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Process(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestProcessKeepsRealFunctionLists(t *testing.T) {
	p := NewProcessor()

	input := "Rework session handling\n\nFunctions Added:\n- startSession\n- endSession\n\nFunctions Removed:\n- legacyLogin"
	result, err := p.Process(input)
	require.NoError(t, err)

	assert.Contains(t, result, "Functions Added:")
	assert.Contains(t, result, "- startSession")
	assert.Contains(t, result, "Functions Removed:")
	assert.Contains(t, result, "- legacyLogin")
}

func TestProcessKeepsBulletNamedNoneWithSiblings(t *testing.T) {
	p := NewProcessor()

	// A function literally named None alongside others is not a
	// placeholder section.
	input := "Add option type\n\nFunctions Added:\n- None\n- Some"
	result, err := p.Process(input)
	require.NoError(t, err)
	assert.Contains(t, result, "- None")
	assert.Contains(t, result, "- Some")
}

func TestProcessKeepsPlaceholderFollowedByProse(t *testing.T) {
	p := NewProcessor()

	// The placeholder is not alone in its section, so the header and the
	// bullet both stay.
	input := "Fix retry loop\n\nFunctions Added:\n- None\nNote: see uploader.go"
	result, err := p.Process(input)
	require.NoError(t, err)
	assert.Equal(t, input, result)
}

func TestProcessTrimsTrailingBlankLines(t *testing.T) {
	p := NewProcessor()

	result, err := p.Process("Add health endpoint\n\nExpose /healthz for probes\n\n\n")
	require.NoError(t, err)

	assert.False(t, strings.HasSuffix(result, "\n"))
	// Interior blank line between subject and body survives.
	assert.Contains(t, result, "Add health endpoint\n\nExpose /healthz")
}

func TestProcessStripsCodeFences(t *testing.T) {
	p := NewProcessor()

	result, err := p.Process("```\nAdd health endpoint\n```")
	require.NoError(t, err)
	assert.Equal(t, "Add health endpoint", result)

	result, err = p.Process("```text\nAdd health endpoint\n```")
	require.NoError(t, err)
	assert.Equal(t, "Add health endpoint", result)
}

func TestProcessEmptyResultFails(t *testing.T) {
	p := NewProcessor()

	tests := []string{
		"",
		"   \n\n  ",
		"Functions Added:\n- None",
	}

	for _, input := range tests {
		_, err := p.Process(input)
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrExtractionFailed, appErr.Code)
	}
}
