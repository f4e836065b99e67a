package protocol

import (
	"errors"
	"fmt"
)

// Decode outcome kinds. Every frame-level failure wraps exactly one of these.
var (
	ErrUnrecognizedCommand = errors.New("protocol: unrecognized command")
	ErrInsufficientData    = errors.New("protocol: insufficient data")
	ErrExcessData          = errors.New("protocol: excess data")
	ErrChecksumMismatch    = errors.New("protocol: checksum mismatch")
	ErrDataValidation      = errors.New("protocol: data validation failed")
	ErrCharset             = errors.New("protocol: character decoding failed")
)

var recoverable = []error{
	ErrUnrecognizedCommand,
	ErrInsufficientData,
	ErrExcessData,
	ErrChecksumMismatch,
	ErrDataValidation,
	ErrCharset,
}

// DecodeError reports why a single frame could not be decoded or encoded.
// It is scoped to that frame; the stream it came from remains usable.
type DecodeError struct {
	Kind    error
	Command byte
	Detail  string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v (command=0x%02X)", e.Kind, e.Command)
	}
	return fmt.Sprintf("%v (command=0x%02X): %s", e.Kind, e.Command, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// Errorf builds a DecodeError of the given kind.
func Errorf(kind error, command byte, format string, args ...any) error {
	return &DecodeError{Kind: kind, Command: command, Detail: fmt.Sprintf(format, args...)}
}

// IsRecoverable reports whether err only invalidates the current frame.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	for _, kind := range recoverable {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// KindOf returns a short label for metrics and logs.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrUnrecognizedCommand):
		return "unrecognized_command"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrExcessData):
		return "excess_data"
	case errors.Is(err, ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, ErrDataValidation):
		return "validation"
	case errors.Is(err, ErrCharset):
		return "charset"
	default:
		return "other"
	}
}
