package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when inference is requested before a model
	// has finished training.
	ErrNotReady = errors.New("model is not ready")

	// ErrInference is returned when a forward pass fails.
	ErrInference = errors.New("inference failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine is closed")
)

// TrainingError records a failed training attempt.
type TrainingError struct {
	Attempt int
	Err     error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training attempt %d: %v", e.Attempt, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking training step.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
