package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Input errors
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrServiceLevelRange    = errors.New("service level must be between 0.0 and 1.0")
	ErrMissingConfiguration = errors.New("missing required configuration")
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Lookup errors
	ErrItemNotFound     = errors.New("item not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrToolNotFound     = errors.New("tool not found")

	// Registry errors
	ErrCapabilityNotFound = errors.New("capability not found")
	ErrRegistryEmpty      = errors.New("capability registry is empty")

	// Execution errors
	ErrToolExecution   = errors.New("tool execution failed")
	ErrTimeout         = errors.New("operation timeout")
	ErrContextCanceled = errors.New("context canceled")
)

// PipelineError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type PipelineError struct {
	Op      string // Operation that failed (e.g., "planner.Build")
	Kind    string // Error kind (e.g., "input", "lookup", "execution")
	ID      string // Optional ID of the entity involved
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *PipelineError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError
func NewPipelineError(op, kind string, err error) *PipelineError {
	return &PipelineError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// IsInputError checks if an error stems from malformed caller input
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrServiceLevelRange)
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrSupplierNotFound) ||
		errors.Is(err, ErrToolNotFound) ||
		errors.Is(err, ErrCapabilityNotFound)
}

// IsExecutionError checks if an error occurred while running a tool
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrToolExecution) ||
		errors.Is(err, ErrTimeout)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
