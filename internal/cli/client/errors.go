package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindForbidden
	KindServerError
	KindBadRequest
	KindOtherHTTP
	KindTimeout
	KindNetwork
)

// Sentinels matching each Kind through errors.Is
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrServerError  = errors.New("server error")
	ErrBadRequest   = errors.New("bad request")
	ErrOtherHTTP    = errors.New("http error")
	ErrTimeout      = errors.New("request timed out")
	ErrNetwork      = errors.New("network error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindServerError:
		return ErrServerError
	case KindBadRequest:
		return ErrBadRequest
	case KindOtherHTTP:
		return ErrOtherHTTP
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrNetwork
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// Error is returned for every call that did not end in a 2xx response
type Error struct {
	Kind Kind
	// Status is zero when no response was received
	Status int
	// Message is the user-facing description; for BadRequest it carries the server message
	Message string
	Method  string
	Path    string
	// Err is the transport error for Timeout and NetworkError
	Err error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (status %d): %s", e.Method, e.Path, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind.sentinel(), e.Err}
	}
	return []error{e.Kind.sentinel()}
}

// KindOf returns the Kind of a client error anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// StatusOf returns the HTTP status of a client error, or zero
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
