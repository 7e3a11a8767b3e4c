package errors

import (
	"fmt"
)

// CodecError is a wrapper around a Kind with a customizable message and an
// optional wrapped cause.
type CodecError interface {
	error
	Kind() Kind
	Unwrap() error
}

type codecError struct {
	kind          Kind
	detail        string
	originalError error
}

// Error reports the Kind's default message, plus the detail (a caller-given
// string or a wrapped error's message) when one was given. A bare New(kind)
// carries no detail, so the colon-separated suffix never appears for it.
func (e codecError) Error() string {
	if e.detail == "" {
		return StrKind(e.kind)
	}
	return fmt.Sprintf("%s: %s", StrKind(e.kind), e.detail)
}

func (e codecError) Kind() Kind {
	return e.kind
}

func (e codecError) Unwrap() error {
	return e.originalError
}

// newCodecError is the single builder every constructor below goes through;
// it decides the detail string and, for NewFromError, the wrapped cause.
func newCodecError(kind Kind, detail string, cause error) codecError {
	return codecError{kind: kind, detail: detail, originalError: cause}
}

// New creates a new [CodecError] with a default message derived from kind.
func New(kind Kind) CodecError {
	return newCodecError(kind, "", nil)
}

// NewFromError wraps an existing error with a Kind classification.
func NewFromError(kind Kind, originalError error) CodecError {
	return newCodecError(kind, originalError.Error(), originalError)
}

// NewWithMessage creates a new CodecError from a Kind with a custom message.
func NewWithMessage(kind Kind, message string) CodecError {
	return newCodecError(kind, message, nil)
}

// Is lets errors.Is(err, errors.ErrBadHeader) etc. match any CodecError of
// the same Kind, not just the sentinel value itself.
func (e codecError) Is(target error) bool {
	other, ok := target.(codecError)
	if !ok {
		return false
	}
	return e.kind == other.kind
}
