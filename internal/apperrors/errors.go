// Package apperrors defines the error taxonomy shared by every stage of the analyzer.
// Each error reports whether an outer caller may retry it.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Retryable is implemented by every error in this package
type Retryable interface {
	error
	Retryable() bool
}

// ValidationError represents bad input shape or length
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Retryable returns false
func (e *ValidationError) Retryable() bool { return false }

// AuthError represents missing or invalid credentials
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unauthorized: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// Retryable returns false
func (e *AuthError) Retryable() bool { return false }

// UpstreamFormatError represents generator output that is not JSON or does not fit the stage schema
type UpstreamFormatError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *UpstreamFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: malformed generator output: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: malformed generator output: %s", e.Stage, e.Message)
}

func (e *UpstreamFormatError) Unwrap() error { return e.Cause }

// Retryable returns true
func (e *UpstreamFormatError) Retryable() bool { return true }

// UpstreamServiceError represents a failed call to the generator service
type UpstreamServiceError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamServiceError) Error() string {
	status := ""
	if e.StatusCode != 0 {
		status = fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("generator service error%s: %s: %v", status, e.Message, e.Cause)
	}
	return fmt.Sprintf("generator service error%s: %s", status, e.Message)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Cause }

// Retryable is true for 5xx, 429 and transport failures without a status
func (e *UpstreamServiceError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// BusinessRuleError represents a request that is well formed but not allowed in the current state
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// Retryable returns false
func (e *BusinessRuleError) Retryable() bool { return false }

// NoDataError represents a user with nothing to analyze
type NoDataError struct {
	Resource string
	Message  string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no %s: %s", e.Resource, e.Message)
}

// Retryable returns false
func (e *NoDataError) Retryable() bool { return false }

// RateLimitError represents a rejected request from a throttled client
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s", e.Message)
}

// Retryable returns true; the client may come back after the window resets
func (e *RateLimitError) Retryable() bool { return true }

// ExhaustedError is returned when a generator call ran out of attempts
type ExhaustedError struct {
	Stage    string
	Attempts int
	Reason   string
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %s", e.Stage, e.Attempts, e.Reason)
}

func (e *ExhaustedError) Unwrap() error { return e.Cause }

// Retryable returns false
func (e *ExhaustedError) Retryable() bool { return false }

// IsRetryable reports whether err, or any error it wraps, is marked retryable.
// Unknown errors are not retryable.
func IsRetryable(err error) bool {
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		authErr       *AuthError
		noDataErr     *NoDataError
		rateErr       *RateLimitError
		businessErr   *BusinessRuleError
		exhaustedErr  *ExhaustedError
	)
	switch {
	case errors.As(err, &exhaustedErr):
		return http.StatusInternalServerError
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &noDataErr):
		return http.StatusNotFound
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &businessErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
