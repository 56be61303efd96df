// Package errors provides the typed failures shared by the search gateway, the
// data reset and their HTTP and workflow front ends.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigMissing     ErrorCode = "CONFIG_MISSING"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeUpstreamHTTP      ErrorCode = "UPSTREAM_HTTP_ERROR"
	ErrCodeUpstreamParse     ErrorCode = "UPSTREAM_PARSE_ERROR"
	ErrCodeUpstreamTimeout   ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamTransport ErrorCode = "UPSTREAM_TRANSPORT_ERROR"
	ErrCodeResetFailed       ErrorCode = "RESET_FAILED"
	ErrCodeSeedFailed        ErrorCode = "SEED_FAILED"
	ErrCodeCancelled         ErrorCode = "CANCELLED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ==========================
// Typed failures
// ==========================

// ConfigError reports a required configuration value that is absent.
type ConfigError struct {
	Key    string // config key, e.g. search.api_key
	EnvVar string // environment variable that can provide it
}

func (e *ConfigError) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("%s is not configured", e.EnvVar)
	}
	return fmt.Sprintf("%s is not configured", e.Key)
}

// ValidationError reports caller input that violates the operation's contract.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UpstreamHTTPError is a non-2xx answer from the search provider. Body holds
// the raw provider text for server-side logs; Error() never includes it.
type UpstreamHTTPError struct {
	Status int
	Body   string
}

func (e *UpstreamHTTPError) Error() string {
	switch e.Status {
	case 429:
		return "Rate limit exceeded. Please try again in a moment."
	case 402:
		return "Search credits depleted. Please add credits to continue."
	}
	return fmt.Sprintf("search provider returned status %d", e.Status)
}

// UpstreamParseError is a provider response body that could not be decoded.
type UpstreamParseError struct {
	Cause error
}

func (e *UpstreamParseError) Error() string {
	return "search provider returned an unreadable response"
}

func (e *UpstreamParseError) Unwrap() error { return e.Cause }

// TransportError is a failure to reach the provider at all.
type TransportError struct {
	Service string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s is unreachable", e.Service)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// TimeoutError is an operation that hit its deadline or was cancelled.
type TimeoutError struct {
	Operation string
	Cause     error
}

func (e *TimeoutError) Error() string {
	if stderrors.Is(e.Cause, context.Canceled) {
		return fmt.Sprintf("%s was cancelled", e.Operation)
	}
	return fmt.Sprintf("%s timed out", e.Operation)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// ResetError aggregates the collections whose deletion failed. Completed lists
// the collections that were deleted anyway; nothing is rolled back.
type ResetError struct {
	UserID    string
	Failures  map[string]error
	Completed []string
}

func (e *ResetError) Error() string {
	names := e.FailedCollections()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return fmt.Sprintf("failed to reset data (%s)", strings.Join(parts, "; "))
}

// FailedCollections returns the failed collection names in sorted order.
func (e *ResetError) FailedCollections() []string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *ResetError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, name := range e.FailedCollections() {
		out = append(out, e.Failures[name])
	}
	return out
}

// SeedError is a sample data write that failed. Stage names the collection
// being written; the whole seed is rolled back.
type SeedError struct {
	UserID string
	Stage  string
	Cause  error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("failed to generate sample data (%s: %v)", e.Stage, e.Cause)
}

func (e *SeedError) Unwrap() error { return e.Cause }

// AsTimeout converts context expiry and network timeouts into a TimeoutError and
// returns nil for anything else.
func AsTimeout(operation string, err error) *TimeoutError {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return &TimeoutError{Operation: operation, Cause: err}
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Operation: operation, Cause: context.DeadlineExceeded}
	}
	return nil
}

// ==========================
// Classification
// ==========================

// Classify maps any error onto the closed set of codes.
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var (
		cfgErr   *ConfigError
		valErr   *ValidationError
		httpErr  *UpstreamHTTPError
		parseErr *UpstreamParseError
		tErr     *TimeoutError
		trErr    *TransportError
		resetErr *ResetError
		seedErr  *SeedError
	)

	// Aggregates come first: they wrap the per-collection causes.
	switch {
	case stderrors.As(err, &resetErr):
		return ErrCodeResetFailed
	case stderrors.As(err, &seedErr):
		return ErrCodeSeedFailed
	case stderrors.As(err, &cfgErr):
		return ErrCodeConfigMissing
	case stderrors.As(err, &valErr):
		return ErrCodeInvalidInput
	case stderrors.As(err, &httpErr):
		return ErrCodeUpstreamHTTP
	case stderrors.As(err, &parseErr):
		return ErrCodeUpstreamParse
	case stderrors.As(err, &tErr):
		if stderrors.Is(tErr.Cause, context.Canceled) {
			return ErrCodeCancelled
		}
		return ErrCodeUpstreamTimeout
	case stderrors.As(err, &trErr):
		return ErrCodeUpstreamTransport
	}
	return ErrCodeInternal
}

// StandardError represents a structured application error, used as the
// variables of a thrown workflow error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ToStandardError normalizes err. Typed failures keep their caller-safe
// Error() text as Message; anything unrecognized gets a generic Message.
func ToStandardError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}

	out := &StandardError{
		Code:      Classify(err),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	var httpErr *UpstreamHTTPError
	if stderrors.As(err, &httpErr) {
		out.Metadata = map[string]interface{}{"status": httpErr.Status}
	}
	var resetErr *ResetError
	if stderrors.As(err, &resetErr) {
		out.Metadata = map[string]interface{}{
			"failed":    resetErr.FailedCollections(),
			"completed": resetErr.Completed,
		}
	}
	var seedErr *SeedError
	if stderrors.As(err, &seedErr) {
		out.Metadata = map[string]interface{}{"stage": seedErr.Stage}
	}
	if out.Code == ErrCodeInternal {
		out.Message = "Unexpected error"
		out.Details = err.Error()
	}
	return out
}

// ToErrorVariables returns a map suitable for workflow error variables.
func (e *StandardError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    string(e.Code),
		"errorMessage": e.Message,
	}
	if e.Details != "" {
		vars["errorDetails"] = e.Details
	}
	for k, v := range e.Metadata {
		vars[k] = v
	}
	return vars
}
