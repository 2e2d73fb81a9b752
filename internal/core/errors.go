package core

import (
	"errors"
	"fmt"
)

// ErrNoRelevantContext is returned by AnswerService when retrieval finds
// nothing usable for the question. It is an expected outcome, not a
// provider failure.
var ErrNoRelevantContext = errors.New("no relevant context found")

// ValidationError reports bad or missing caller input. It is raised
// before any provider call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// InitializationError reports a failed vector index setup. The Providers
// holder stays retryable after returning one.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("provider initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ProviderError wraps a failed downstream call (embedding, vector store,
// or chat model) with the operation that failed.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *ProviderError) Unwrap() error { return e.Err }
