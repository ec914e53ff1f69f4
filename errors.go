package csvproc

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput       = errors.New("no data to process, input is empty")
	ErrRowLength        = errors.New("row length does not match headers")
	ErrRowTooLarge      = errors.New("maximum row size has been exceeded")
	ErrUnreadableSource = errors.New("cannot read source")

	// ErrPassInFlight is returned by control operations that would start or
	// reconfigure a pass while another one is still running.
	ErrPassInFlight = errors.New("decode pass already in flight")
)

// DecodeError is delivered through the error notification. It unwraps to the
// sentinel matching its Kind and, for UnreadableSource, to the cause.
type DecodeError struct {
	Kind ErrorKind
	Line int // 1-based input line, 0 when not applicable
	Err  error
}

// Error formats the decode error with its kind and line.
func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("csvproc: %s on line %d: %v", e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("csvproc: %s: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	sentinel := e.Kind.sentinel()
	if sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil && e.Err != sentinel {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k ErrorKind) sentinel() error {
	switch k {
	case EmptyInput:
		return ErrEmptyInput
	case RowLengthMismatch:
		return ErrRowLength
	case RowTooLarge:
		return ErrRowTooLarge
	case UnreadableSource:
		return ErrUnreadableSource
	default:
		return nil
	}
}

func newDecodeError(kind ErrorKind, line int, err error) *DecodeError {
	if err == nil {
		err = kind.sentinel()
	}
	return &DecodeError{Kind: kind, Line: line, Err: err}
}
