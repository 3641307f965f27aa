package scp

import (
	"errors"
	"fmt"
)

// Validation error kinds. A *ValidationError matches its kind with errors.Is.
var (
	ErrNonFiniteBound       = errors.New("non-finite band bound")
	ErrInvertedRange        = errors.New("inverted band range")
	ErrNonContiguousRange   = errors.New("non-contiguous band range")
	ErrDuplicateQuestionKey = errors.New("duplicate question key")
	ErrEmptyQuestionKey     = errors.New("empty question key")
	ErrInvalidOption        = errors.New("invalid question option")
	ErrEmptyMethodKey       = errors.New("empty method key")
)

// ErrInvalidAnswer is returned by Score for answers that do not fit the method.
var ErrInvalidAnswer = errors.New("invalid answer")

// ValidationError reports the first configuration defect found.
// Index is the position of the offending band (after sorting by Min) or question.
type ValidationError struct {
	Kind    error
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, index int, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	}
}
