package domain

import "fmt"

// ErrorKind discriminates structured failures at component boundaries.
type ErrorKind string

const (
	ErrSchemaInvalid          ErrorKind = "schema_invalid"
	ErrInsufficientHistory    ErrorKind = "insufficient_history"
	ErrItemNotFound           ErrorKind = "item_not_found"
	ErrInventoryUnavailable   ErrorKind = "inventory_unavailable"
	ErrExternalServiceFailure ErrorKind = "external_service_failure"
	ErrForecastFailed         ErrorKind = "forecast_failed"
	ErrStockCheckFailed       ErrorKind = "stock_check_failed"
	ErrUnsupportedFormat      ErrorKind = "unsupported_format"
	ErrEmptyFile              ErrorKind = "empty_file"
)

// Error is the structured error that crosses component boundaries. No
// bare panics or untyped failures leave a component; callers switch on
// Kind and show Message.
type Error struct {
	Kind    ErrorKind `json:"error"`
	Message string    `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches errors by kind so errors.Is works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds a structured error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause for logging while keeping the structured
// kind and message as the caller-facing contract.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the kind from any error, defaulting to forecast_failed
// for untyped failures so callers always have a discriminant.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ErrForecastFailed
}

// AsError converts any error into a structured one, passing through
// errors that already carry a kind.
func AsError(err error, fallback ErrorKind) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: fallback, Message: err.Error(), cause: err}
}
