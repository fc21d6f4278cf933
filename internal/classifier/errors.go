package classifier

import (
	"errors"
)

type Kind int

const (
	// KindValidation means the caller sent unusable input. The reason is safe
	// to return to the caller.
	KindValidation Kind = iota + 1
	// KindInference means the pipeline failed internally. Callers only ever
	// see FailureMessage.
	KindInference
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInference:
		return "inference"
	}
	return "unknown"
}

const FailureMessage = "Classification failed. Please try again."

// Error is returned by Classify. Use errors.As to inspect Kind.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindValidation {
		return e.Reason
	}
	return FailureMessage
}

// Unwrap exposes the internal cause for logging.
func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func inferenceError(err error) *Error {
	return &Error{Kind: KindInference, Reason: FailureMessage, Err: err}
}

// IsValidation reports whether err is a classifier validation failure.
func IsValidation(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindValidation
}

// IsInference reports whether err is a classifier inference failure.
func IsInference(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindInference
}
