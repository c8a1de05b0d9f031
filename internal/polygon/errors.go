package polygon

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind int

// Failure kinds.
const (
	KindRequestFailed Kind = iota
	KindConfiguration
	KindUnauthorized
	KindRateLimited
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server_error"
	default:
		return "request_failed"
	}
}

// Sentinels for errors.Is matching against *Error.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limited")
	ErrServer        = errors.New("server error")
	ErrRequestFailed = errors.New("request failed")
)

// User-facing messages.
const (
	MsgMissingAPIKey = "Polygon API key is required. Please set POLYGON_API_KEY in your environment or .env file"
	MsgRateLimited   = "Rate limit exceeded. Please try again later."
	MsgUnauthorized  = "Invalid API key. Please check your Polygon API key."
	MsgServerError   = "Server error. Please try again later."
	MsgRequestFailed = "An error occurred while fetching data."
)

// Error is a classified fetch failure. Error() returns a message suitable
// for showing to the user; the underlying cause is kept in Err.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

// Detail returns the message together with the status and cause, for logs.
func (e *Error) Detail() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (kind=%s status=%d)", e.Message, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (kind=%s status=%d): %v", e.Message, e.Kind, e.StatusCode, e.Err)
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindConfiguration:
		return ErrConfiguration
	case KindUnauthorized:
		return ErrUnauthorized
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	default:
		return ErrRequestFailed
	}
}

// KindOf returns the kind of a fetch failure, or KindRequestFailed for
// errors that did not come from this package.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindRequestFailed
}

func statusError(status int, bodyMessage string) *Error {
	switch {
	case status == 429:
		return &Error{Kind: KindRateLimited, StatusCode: status, Message: MsgRateLimited}
	case status == 401:
		return &Error{Kind: KindUnauthorized, StatusCode: status, Message: MsgUnauthorized}
	case status >= 500:
		return &Error{Kind: KindServer, StatusCode: status, Message: MsgServerError}
	}

	msg := bodyMessage
	if msg == "" {
		msg = MsgRequestFailed
	}
	return &Error{Kind: KindRequestFailed, StatusCode: status, Message: msg}
}

// Retryable returns a classifier for the query layer's retry policy.
// Configuration errors are never retried. With retryClientErrors false,
// 401 and 429 responses are not retried either.
func Retryable(retryClientErrors bool) func(error) bool {
	return func(err error) bool {
		switch KindOf(err) {
		case KindConfiguration:
			return false
		case KindUnauthorized, KindRateLimited:
			return retryClientErrors
		default:
			return true
		}
	}
}
