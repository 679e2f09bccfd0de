// Package errors provides error values and helpers for TrustLens.
// It sits on top of the standard errors package and adds the
// transient/permanent split that the retry layer relies on.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Failure classes shared by analyzers and the HTTP client.
var (
	ErrTimeout            = errors.New("operation timed out")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidResponse marks a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response")
)

type contextError struct {
	msg   string
	cause error
}

func (e *contextError) Error() string { return e.msg + ": " + e.cause.Error() }
func (e *contextError) Unwrap() error { return e.cause }

// Wrap prefixes err with msg. A nil err stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &contextError{msg: msg, cause: err}
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &contextError{msg: fmt.Sprintf(format, args...), cause: err}
}

// StatusError is a non-2xx HTTP answer. Class is the failure class the
// status maps to and is what errors.Is matches against.
type StatusError struct {
	Code  int
	Class error
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.Code)
	if text == "" {
		text = "unexpected status"
	}
	if e.Class == nil {
		return fmt.Sprintf("HTTP %d %s", e.Code, text)
	}
	return fmt.Sprintf("HTTP %d %s: %v", e.Code, text, e.Class)
}

func (e *StatusError) Unwrap() error { return e.Class }

// FromStatus classifies an HTTP status code. 2xx yields nil.
func FromStatus(code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	var class error
	switch {
	case code == http.StatusTooManyRequests:
		class = ErrRateLimit
	case code == http.StatusNotFound || code == http.StatusGone:
		class = ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		class = ErrUnauthorized
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		class = ErrTimeout
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity ||
		code == http.StatusRequestEntityTooLarge:
		class = ErrInvalidInput
	case code >= 500:
		class = ErrServiceUnavailable
	}
	return &StatusError{Code: code, Class: class}
}

// StatusCode extracts the HTTP status carried anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

func Is(err, target error) bool     { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
func New(msg string) error          { return errors.New(msg) }
func Join(errs ...error) error      { return errors.Join(errs...) }

// IsTimeout covers ErrTimeout, context deadlines and net.Error timeouts.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsPermanent reports failures a retry cannot fix. Unclassified 4xx
// answers count as permanent.
func IsPermanent(err error) bool {
	for _, target := range []error{ErrInvalidInput, ErrNotFound, ErrUnauthorized, ErrInvalidResponse} {
		if errors.Is(err, target) {
			return true
		}
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Class == nil && se.Code >= 400 && se.Code < 500
	}
	return false
}
