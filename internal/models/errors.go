package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrResolve ErrorType = iota
	ErrTemplate
	ErrDownload
	ErrExtract
	ErrEnvironment
	ErrInstallCommand
	ErrExec
	ErrInvalidConfig
	ErrVerification
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrResolve:
		return "Resolve"
	case ErrTemplate:
		return "Template"
	case ErrDownload:
		return "Download"
	case ErrExtract:
		return "Extract"
	case ErrEnvironment:
		return "Environment"
	case ErrInstallCommand:
		return "InstallCommand"
	case ErrExec:
		return "Exec"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrVerification:
		return "Verification"
	default:
		return "Unknown"
	}
}

var (
	// ErrUnknownRule is returned when an install command names a rule that is not recognised.
	ErrUnknownRule = errors.New("unknown when_to_run rule")

	// ErrNoCommand is returned when there is nothing to execute after installation.
	ErrNoCommand = errors.New("no command given")

	// ErrNotFound is returned when a remote resource answers 404.
	ErrNotFound = errors.New("resource not found")
)

// SolipathError represents a failure while preparing or running a project's dependencies
type SolipathError struct {
	Type       ErrorType
	Dependency string
	Err        error
}

// Error implements the error interface
func (e *SolipathError) Error() string {
	if e.Dependency != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Dependency, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *SolipathError) Unwrap() error {
	return e.Err
}

// NewError wraps err with a type and the dependency it concerns.
func NewError(t ErrorType, dep Dependency, err error) *SolipathError {
	return &SolipathError{Type: t, Dependency: dep.String(), Err: err}
}

// IsType reports whether err carries a SolipathError of the given type.
func IsType(err error, t ErrorType) bool {
	var se *SolipathError
	if errors.As(err, &se) {
		return se.Type == t
	}
	return false
}
