package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrExpectedTaskParameter is returned when a required step parameter
	// is missing or empty
	ErrExpectedTaskParameter = errors.New("expected task parameter")
	// ErrInvalidParameter is returned when a parameter cannot be parsed
	ErrInvalidParameter = errors.New("invalid task parameter")
	// ErrMissingContextValue is returned when a step needs a context value
	// that no earlier step stored
	ErrMissingContextValue = errors.New("missing rule context value")
)

// ErrorClass tells the host how a step failed
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	// ClassEncoding is malformed or unsupported input
	ClassEncoding
	// ClassConfiguration is missing master data or step parameters
	ClassConfiguration
	// ClassProtocol is an unusable answer from a remote system
	ClassProtocol
)

func (c ErrorClass) String() string {
	switch c {
	case ClassEncoding:
		return "encoding"
	case ClassConfiguration:
		return "configuration"
	case ClassProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// StepError is returned to the host when a step fails. Steps never retry;
// the host decides what to do with the task.
type StepError struct {
	Step  string
	Class ErrorClass
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed (%s): %v", e.Step, e.Class, e.Err)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Err
}

// ParameterError describes a missing or unusable step parameter
type ParameterError struct {
	Name   string
	Value  string
	Reason string
	Err    error
}

func (e *ParameterError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Name)
	}
	return fmt.Sprintf("%v: %q=%q: %s", e.Err, e.Name, e.Value, e.Reason)
}

// Unwrap returns ErrExpectedTaskParameter or ErrInvalidParameter
func (e *ParameterError) Unwrap() error {
	return e.Err
}
