// Package errors provides standardized error handling for the discovery pipeline.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNetworkFailure     ErrorCode = "NETWORK_FAILURE"
	ErrCodeParseFailure       ErrorCode = "PARSE_FAILURE"
	ErrCodeCacheFailure       ErrorCode = "CACHE_FAILURE"
	ErrCodeAIDiscoveryFailed  ErrorCode = "AI_DISCOVERY_FAILED"
	ErrCodeAITimeout          ErrorCode = "AI_TIMEOUT"
	ErrCodeEnrichmentFailed   ErrorCode = "ENRICHMENT_FAILED"
	ErrCodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewNetworkFailure creates a retryable network-level fetch error. The
// orchestrator recovers it locally with the source's fallback catalog.
func NewNetworkFailure(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkFailure,
		Message:   fmt.Sprintf("Network failure fetching source '%s'", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHTTPStatusFailure creates a network failure for a non-2xx response.
func NewHTTPStatusFailure(source string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkFailure,
		Message:   fmt.Sprintf("Source '%s' returned unexpected status", source),
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseFailure creates a non-retryable markup interpretation error. Only
// raised when the whole response is uninterpretable; partial parse failures
// return the parseable subset instead.
func NewParseFailure(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseFailure,
		Message:   fmt.Sprintf("Unparseable response from source '%s'", source),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheFailure creates a cache storage error. Always degraded to a miss
// (on read) or swallowed (on write); never surfaced to callers.
func NewCacheFailure(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailure,
		Message:   "Result cache storage error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIDiscoveryFailed creates a retryable AI discovery error.
func NewAIDiscoveryFailed(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIDiscoveryFailed,
		Message:   "AI funding discovery request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAITimeout creates a retryable AI discovery timeout error.
func NewAITimeout() *StandardError {
	return &StandardError{
		Code:      ErrCodeAITimeout,
		Message:   "AI funding discovery timeout",
		Details:   "completion call exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentFailed creates a non-retryable enrichment error. Enrichment
// is best effort; the pipeline continues with the user-provided profile.
func NewEnrichmentFailed(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   "Company registry enrichment failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError creates a non-retryable configuration error.
func NewConfigurationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationError,
		Message:   fmt.Sprintf("Invalid configuration: %s", field),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAIDiscoveryFailed:
		return 3
	case ErrCodeAITimeout:
		return 2
	case ErrCodeNetworkFailure, ErrCodeCacheFailure:
		// Recovered locally (fallback / cache miss), not re-attempted in-cycle.
		return 0
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// CodeOf extracts the ErrorCode from an error chain, or empty if none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NETWORK") || strings.Contains(codeStr, "PARSE"):
		return "SOURCE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "AI"):
		return "AI"
	case strings.Contains(codeStr, "ENRICHMENT"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIG"
	default:
		return "OTHER"
	}
}
