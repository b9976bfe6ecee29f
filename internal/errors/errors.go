package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind tags an error with the class of failure it represents.
type Kind uint8

const (
	// KindUnknown errors are classified by their message text.
	KindUnknown Kind = iota
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// StatusCode returns the HTTP status reported to clients for the kind.
// Conflicts are not handled by callers and surface as 500.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a kind and a human readable message.
type Error struct {
	Kind       Kind
	Message    string
	underlying error
}

func (e *Error) Error() string {
	if e.underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap wraps err with a kind and context message.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, underlying: err}
}

// KindOf reports the kind of the first tagged error in err's chain. Errors
// without a tag, or tagged KindUnknown, are classified by Classify.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	for cur := err; errors.As(cur, &e); cur = e.underlying {
		if e.Kind != KindUnknown {
			return e.Kind
		}
	}
	return Classify(err.Error())
}

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	return KindOf(err).StatusCode()
}

// Classify picks a kind from keywords in an error message. It exists for
// errors raised by collaborators that carry no kind.
func Classify(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "authentication"), strings.Contains(m, "unauthorized"):
		return KindUnauthorized
	case strings.Contains(m, "not found"):
		return KindNotFound
	default:
		return KindInternal
	}
}
