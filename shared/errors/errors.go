package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindStorage
)

// Sentinels for errors.Is checks against any ErrorWithStatusCode of that kind.
var (
	ErrValidation   = &ErrorWithStatusCode{Kind: KindValidation}
	ErrNotFound     = &ErrorWithStatusCode{Kind: KindNotFound}
	ErrForbidden    = &ErrorWithStatusCode{Kind: KindForbidden}
	ErrUnauthorized = &ErrorWithStatusCode{Kind: KindUnauthorized}
	ErrStorage      = &ErrorWithStatusCode{Kind: KindStorage}
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Kind       Kind
	Code       string // short machine readable code, e.g. "not_found"
	Message    string
	StatusCode int
	Err        error // cause, never shown to clients
}

func (e *ErrorWithStatusCode) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *ErrorWithStatusCode) Is(target error) bool {
	t, ok := target.(*ErrorWithStatusCode)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.StatusCode == 0
}

func Validation(msg string) error {
	return &ErrorWithStatusCode{Kind: KindValidation, Code: "invalid_request", Message: msg, StatusCode: http.StatusBadRequest}
}

func NotFound(msg string) error {
	return &ErrorWithStatusCode{Kind: KindNotFound, Code: "not_found", Message: msg, StatusCode: http.StatusNotFound}
}

func Forbidden(msg string) error {
	return &ErrorWithStatusCode{Kind: KindForbidden, Code: "forbidden", Message: msg, StatusCode: http.StatusForbidden}
}

func Unauthorized(msg string) error {
	return &ErrorWithStatusCode{Kind: KindUnauthorized, Code: "unauthorized", Message: msg, StatusCode: http.StatusUnauthorized}
}

// Storage wraps a failure of the underlying store. msg is what the client sees.
func Storage(msg string, cause error) error {
	return &ErrorWithStatusCode{Kind: KindStorage, Code: "internal_error", Message: msg, StatusCode: http.StatusInternalServerError, Err: cause}
}

// As returns the ErrorWithStatusCode in err's chain, if any.
func As(err error) (*ErrorWithStatusCode, bool) {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
