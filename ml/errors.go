package ml

import (
	"errors"
	"fmt"
)

// ArtifactLoadError is fatal: the process cannot serve predictions without both models.
type ArtifactLoadError struct {
	Source string
	Err    error
}

func (e *ArtifactLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load artifact bundle: %v", e.Err)
	}
	return fmt.Sprintf("load artifact bundle %s: %v", e.Source, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input: %s", e.Field)
}

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// TransformError means the assembled vector and the loaded artifacts disagree.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform: %v", e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

type UnknownClassError struct {
	Index int
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class index %d", e.Index)
}

// IsValidation reports whether err rejects the caller's input.
func IsValidation(err error) bool {
	var missing *MissingInputError
	var invalid *InvalidInputError
	return errors.As(err, &missing) || errors.As(err, &invalid)
}

// IsContract reports whether err points at a mismatch between this code and the loaded artifacts.
func IsContract(err error) bool {
	var transform *TransformError
	var unknown *UnknownClassError
	return errors.As(err, &transform) || errors.As(err, &unknown)
}
