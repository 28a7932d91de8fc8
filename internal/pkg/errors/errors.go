// Package errors provides error types, handling utilities, and logging for draftcommit.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode represents the category of an error.
type ErrorCode int

const (
	// User errors (Exit Code 1)
	ErrEmptyDiff ErrorCode = iota + 100
	ErrConfigNotFound
	ErrInvalidConfig
	ErrUserAborted
	ErrInvalidArguments

	// System errors (Exit Code 2)
	ErrGitCommandFailed ErrorCode = iota + 200
	ErrFileSystemError

	// External errors (Exit Code 3)
	ErrProviderFailed ErrorCode = iota + 300
	ErrExtractionFailed
	ErrNetworkError
	ErrTimeout
	ErrAuthenticationFailed
)

// ExitCode returns the appropriate exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c >= 100 && c < 200:
		return 1 // User errors
	case c >= 200 && c < 300:
		return 2 // System errors
	case c >= 300:
		return 3 // External errors
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrEmptyDiff:
		return "EmptyDiff"
	case ErrConfigNotFound:
		return "ConfigNotFound"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrUserAborted:
		return "UserAborted"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrProviderFailed:
		return "ProviderError"
	case ErrExtractionFailed:
		return "ExtractionFailure"
	case ErrNetworkError:
		return "NetworkError"
	case ErrTimeout:
		return "Timeout"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Provider   string // Which provider produced the error, if any
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// IsRecoverable reports whether the provider chain may recover from this
// error by moving to the fallback provider. Only provider-side failures
// qualify; user and system errors always propagate.
func (e *AppError) IsRecoverable() bool {
	switch e.Code {
	case ErrProviderFailed, ErrExtractionFailed, ErrNetworkError, ErrTimeout, ErrAuthenticationFailed:
		return true
	default:
		return false
	}
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1
}

// IsRecoverable checks if an error allows falling back to the other provider.
func IsRecoverable(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.IsRecoverable()
	}
	return false
}

// Common error constructors with suggestions

// NewEmptyDiffError creates an error for an empty staged diff.
func NewEmptyDiffError() *AppError {
	return &AppError{
		Code:       ErrEmptyDiff,
		Message:    "no staged changes found",
		Suggestion: "Use 'git add <files>' to stage changes before generating a commit message",
	}
}

// NewConfigNotFoundError creates an error for missing credentials.
func NewConfigNotFoundError() *AppError {
	return &AppError{
		Code:       ErrConfigNotFound,
		Message:    "no provider credentials found",
		Suggestion: "Set GEMINI_API_KEY or OPENAI_API_KEY in the environment, a .env file, or via 'draftcommit config set providers.gemini_api_key <key>'",
	}
}

// NewUserAbortedError creates an error for a declined manual entry.
func NewUserAbortedError() *AppError {
	return &AppError{
		Code:    ErrUserAborted,
		Message: "commit aborted: no message provided",
	}
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Message = fmt.Sprintf("git command failed: %s", strings.TrimSpace(output))
	}
	return appErr
}

// NewProviderError creates an error for a structured provider error response.
func NewProviderError(provider, message string) *AppError {
	return &AppError{
		Code:     ErrProviderFailed,
		Message:  fmt.Sprintf("%s returned an error: %s", provider, message),
		Provider: provider,
	}
}

// NewExtractionError creates an error for a response with no usable text.
func NewExtractionError(provider string) *AppError {
	return &AppError{
		Code:     ErrExtractionFailed,
		Message:  fmt.Sprintf("%s response contained no usable message text", provider),
		Provider: provider,
	}
}

// NewNetworkError creates an error for network failures.
func NewNetworkError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrNetworkError,
		Message:    fmt.Sprintf("network failure calling %s", provider),
		Cause:      err,
		Provider:   provider,
		Suggestion: "Please check your network connection and try again",
	}
}

// NewTimeoutError creates an error for timeouts.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    "request timed out",
		Cause:      err,
		Suggestion: "Please check your network connection or try again later",
	}
}

// NewAuthenticationError creates an error for authentication failures.
func NewAuthenticationError(provider string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("authentication failed with %s", provider),
		Provider:   provider,
		Suggestion: "Please check your API key is valid and has not expired",
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Provider != "" {
			sb.WriteString(fmt.Sprintf("  Provider: %s\n", appErr.Provider))
		}

		if appErr.Cause != nil {
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	for _, pattern := range apiKeyPatterns {
		msg = pattern.ReplaceAllStringFunc(msg, func(match string) string {
			if len(match) <= 4 {
				return "****"
			}
			return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
		})
	}
	return msg
}

// apiKeyPatterns match the key formats of both supported providers.
var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`),
}
