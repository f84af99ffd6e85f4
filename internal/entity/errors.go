package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Configuration errors, fatal at startup
	ErrInvalidConfig = errors.New("invalid configuration")

	// Ingestion errors, reported per file
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// Index errors
	ErrIndexNotFound = errors.New("no index has been persisted yet")
	ErrCorruptIndex  = errors.New("persisted index is corrupt")
	ErrInvalidTopK   = errors.New("top-k must be positive")

	// Query errors
	ErrNoDocumentsIngested = errors.New("no documents ingested")
	ErrEmptyQuestion       = errors.New("question must not be empty")
)

// ProviderError is a transport or provider failure from an external
// embedding/LLM service. Surfaced to the caller as a query failure, never
// retried by the core engine.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

// LoadError is a per-document loader failure (corrupt file, unreadable
// encoding, unreachable URL).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
