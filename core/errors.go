package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// Kind classifies domain errors so that transports can map them to their own status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad request"
	default:
		return "internal"
	}
}

// Error is a domain error of a known Kind. Packages declare them as sentinels, eg:
//
//	ErrNotFound = core.NewNotFoundError("class not found")
type Error struct {
	Kind    Kind
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

func NewNotFoundError(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func NewConflictError(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func NewForbiddenError(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func NewBadRequestError(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }

// KindOf returns the Kind of the root cause of err.
// Validation errors are bad requests; anything unknown is internal.
func KindOf(err error) Kind {
	switch cause := errors.Cause(err).(type) {
	case *Error:
		return cause.Kind
	case *ValidationError:
		return KindBadRequest
	default:
		return KindInternal
	}
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
