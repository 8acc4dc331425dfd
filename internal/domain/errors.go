package domain

import "errors"

// ErrorKind classifies failures that are reported back to the caller
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1 // Missing or malformed input
	KindNotFound                        // Referenced record does not exist
	KindConflict                        // Uniqueness or referential integrity violation
)

// Sentinels usable with errors.Is against any *Error of the same kind
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("integrity conflict")
)

// Error is a client-visible failure. Message is surfaced verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches the sentinel of the same kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }

// AsError extracts the *Error from err, if any
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
