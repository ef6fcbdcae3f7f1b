package gs1

import (
	"errors"
	"fmt"
)

// ErrorKind classifies identifier codec failures
type ErrorKind int

const (
	// KindInvalidEncoding is a malformed or unsupported identifier format
	KindInvalidEncoding ErrorKind = iota + 1
	// KindInvalidCompanyPrefix is an empty or unusable company prefix
	KindInvalidCompanyPrefix
	// KindTradeItemConfiguration is a GTIN without usable trade item master data
	KindTradeItemConfiguration
	// KindCompanyLookup is an SSCC whose company prefix is absent or ambiguous
	KindCompanyLookup
	// KindNotImplemented marks encodings the codec deliberately does not convert
	KindNotImplemented
)

// Sentinel errors, one per kind, for use with errors.Is
var (
	ErrInvalidEncoding        = errors.New("invalid encoding")
	ErrInvalidCompanyPrefix   = errors.New("invalid company prefix")
	ErrTradeItemConfiguration = errors.New("trade item configuration error")
	ErrCompanyLookup          = errors.New("company lookup error")
	ErrNotImplemented         = errors.New("not implemented")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidEncoding:
		return ErrInvalidEncoding
	case KindInvalidCompanyPrefix:
		return ErrInvalidCompanyPrefix
	case KindTradeItemConfiguration:
		return ErrTradeItemConfiguration
	case KindCompanyLookup:
		return ErrCompanyLookup
	case KindNotImplemented:
		return ErrNotImplemented
	}
	return nil
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type returned by the codec. It carries the
// offending identifier and, for length problems, the expected and actual
// lengths.
type Error struct {
	Kind       ErrorKind
	Identifier string
	Expected   int
	Actual     int
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Identifier != "" {
		msg += fmt.Sprintf(" for %q", e.Identifier)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Expected != 0 || e.Actual != 0 {
		msg += fmt.Sprintf(" (expected length %d, got %d)", e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func encodingError(identifier, reason string) *Error {
	return &Error{Kind: KindInvalidEncoding, Identifier: identifier, Reason: reason}
}

func lengthError(identifier string, expected, actual int) *Error {
	return &Error{Kind: KindInvalidEncoding, Identifier: identifier, Expected: expected, Actual: actual}
}
