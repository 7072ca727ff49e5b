// Package errors provides sentinel and custom error types for the analysis pipeline.
package errors

import "fmt"

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrValidation represents a validation error.
// Use when a dataset has no usable text column or a request fails validation.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field: %s", e.Field)
	}
	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ErrProvider represents an external provider failure.
// Use when an embedding or language-model call fails at the transport level.
var ErrProvider = &ProviderError{}

// ProviderError is a sentinel error for embedding/LLM provider failures.
// It aborts the run; the job is marked failed with the provider's message.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

// NewProviderError wraps a provider failure with the provider name.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	return "provider error"
}

// Unwrap returns the underlying provider error.
func (e *ProviderError) Unwrap() error { return e.Err }

// Is implements the error interface for error comparison.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)
	return ok
}

// ErrInsightParse represents a failure to reduce LLM output to one JSON object.
var ErrInsightParse = &InsightParseError{}

// InsightParseError is a sentinel error for unparseable language-model responses.
// Propagates fail-fast: a bad response for one cluster fails the whole analysis.
type InsightParseError struct {
	ClusterID int
	Message   string
}

// NewInsightParseError creates a new InsightParseError for a cluster.
func NewInsightParseError(clusterID int, message string) *InsightParseError {
	return &InsightParseError{ClusterID: clusterID, Message: message}
}

// Error implements the error interface.
func (e *InsightParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("insight parse failed for cluster %d: %s", e.ClusterID, e.Message)
	}
	return "insight parse error"
}

// Is implements the error interface for error comparison.
func (e *InsightParseError) Is(target error) bool {
	_, ok := target.(*InsightParseError)
	return ok
}

// ErrStoreUnavailable represents an unreachable cache/queue backend.
var ErrStoreUnavailable = &StoreUnavailableError{}

// StoreUnavailableError is a sentinel error for key-value store failures.
// Retried at the infrastructure level, never masked by the pipeline.
type StoreUnavailableError struct {
	Op  string
	Err error
}

// NewStoreUnavailableError wraps a store failure with the failing operation.
func NewStoreUnavailableError(op string, err error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Err: err}
}

// Error implements the error interface.
func (e *StoreUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
	}
	return "store unavailable"
}

// Unwrap returns the underlying store error.
func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// Is implements the error interface for error comparison.
func (e *StoreUnavailableError) Is(target error) bool {
	_, ok := target.(*StoreUnavailableError)
	return ok
}

// ErrClusterAlignment represents labels that don't align 1:1 with the dataset.
var ErrClusterAlignment = &ClusterAlignmentError{}

// ClusterAlignmentError is a sentinel error for label/dataset length mismatches.
// Fatal, not recoverable locally.
type ClusterAlignmentError struct {
	Labels  int
	Records int
}

// NewClusterAlignmentError creates a new ClusterAlignmentError.
func NewClusterAlignmentError(labels, records int) *ClusterAlignmentError {
	return &ClusterAlignmentError{Labels: labels, Records: records}
}

// Error implements the error interface.
func (e *ClusterAlignmentError) Error() string {
	return fmt.Sprintf("cluster labels (%d) do not align with dataset rows (%d)", e.Labels, e.Records)
}

// Is implements the error interface for error comparison.
func (e *ClusterAlignmentError) Is(target error) bool {
	_, ok := target.(*ClusterAlignmentError)
	return ok
}
