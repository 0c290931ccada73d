package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when the model or the detector failed to load.
	ErrNotReady = errors.New("inference: model or detector not loaded")

	ErrUnknownDetector   = errors.New("inference: unknown detector backend")
	ErrUnknownClassifier = errors.New("inference: unknown classifier backend")
	ErrEmptyFrame        = errors.New("inference: empty frame")
)

// ClassCountError reports a model output that does not match the label set.
type ClassCountError struct {
	Got int
}

func (e *ClassCountError) Error() string {
	return fmt.Sprintf("inference: model returned %d classes, want %d", e.Got, NumClasses)
}

// LoadError records why the inference context is not ready.
type LoadError struct {
	Component string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("inference: load %s: %v", e.Component, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
