// Package security provides credential-handling utilities for draftcommit.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// APIKeyFormat defines the expected key format patterns per provider.
var APIKeyFormat = map[string]*regexp.Regexp{
	"openai": regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`),
	"gemini": regexp.MustCompile(`^AIza[a-zA-Z0-9_-]{30,}$`),
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ValidateAPIKeyFormat validates the format of an API key for a given provider.
// Returns nil if the key format is valid, or an error describing the issue.
func ValidateAPIKeyFormat(provider, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key is required for %s provider", provider)
	}

	if len(apiKey) < 20 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}

	pattern, exists := APIKeyFormat[provider]
	if exists && pattern != nil {
		if !pattern.MatchString(apiKey) {
			return fmt.Errorf("API key format appears invalid for %s provider", provider)
		}
	}

	return nil
}

// SanitizeForLogging sanitizes a string for safe logging by masking potential secrets.
func SanitizeForLogging(s string) string {
	patterns := []struct {
		regex       *regexp.Regexp
		replacement string
	}{
		// OpenAI-style keys
		{regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`), "sk-****"},
		// Google API keys
		{regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`), "AIza****"},
		// Bearer tokens
		{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
		// Key-as-query-parameter (the Gemini auth style)
		{regexp.MustCompile(`([?&]key=)[a-zA-Z0-9_-]+`), "$1****"},
		// Generic API key patterns
		{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	}

	result := s
	for _, p := range patterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}

	return result
}

// FirstUseWarning is the warning message displayed on first use.
const FirstUseWarning = `
⚠️  IMPORTANT SECURITY NOTICE ⚠️

draftcommit sends your staged git diff content to external AI services
(Gemini or OpenAI) to generate commit messages.

This means your code changes will be transmitted over the internet to
third-party servers. Please ensure you:

1. Do not stage sensitive information (API keys, passwords, secrets)
2. Review your staged changes before running draftcommit

`

// FirstUseAcknowledgment is the message shown after user acknowledges the warning.
const FirstUseAcknowledgment = "Thank you for acknowledging the security notice. This warning will not be shown again."
