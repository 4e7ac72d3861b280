package apiclient

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures at the API boundary
type ErrorKind string

const (
	// KindNetwork means the backend could not be reached at all
	KindNetwork ErrorKind = "network"
	// KindMalformed means the body was empty or not JSON
	KindMalformed ErrorKind = "malformed"
	// KindHTTP means a non-2xx status
	KindHTTP ErrorKind = "http"
	// KindDomain means a 2xx envelope with success false
	KindDomain ErrorKind = "domain"
)

const (
	MsgUnreachable   = "Unable to connect to the server. Please check your connection and try again."
	MsgNotResponding = "Server is not responding. Please try again later."
	MsgRequestFailed = "Request failed"
)

// Error is the single error type surfaced by the client. Message is always
// fit to show to a user.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// UserMessage extracts a human-readable message from any error
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
