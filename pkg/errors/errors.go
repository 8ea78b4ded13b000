package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the kinds of fatal failure a sync run can hit
type ErrorType string

const (
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
	ErrorTypeNavigation       ErrorType = "navigation"
	ErrorTypeNoPostsFound     ErrorType = "no_posts_found"
	ErrorTypeMetadataMissing  ErrorType = "metadata_missing"
	ErrorTypeDownload         ErrorType = "download"
	ErrorTypeStoreWrite       ErrorType = "store_write"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Error represents a typed pipeline error. Code holds the HTTP status when
// the failure came from a response, 0 otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(errType ErrorType, err error, message string) *Error {
	return &Error{Type: errType, Message: message, Err: err}
}

// WithCode attaches an HTTP status code
func (e *Error) WithCode(code int) *Error {
	e.Code = code
	return e
}

// TypeOf returns the type of the first *Error in err's chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err's chain contains an *Error of the given type
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
