// Package input provides input adapters that turn external data into toasts.
package input

import (
	"context"

	"github.com/jmylchreest/toastd/internal/model"
)

// InputAdapter reads toast content from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin").
	Name() string

	// Import reads toast content from the source.
	Import(ctx context.Context) ([]model.Content, error)
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
