// Package apperr is the failure taxonomy shared by the session service,
// the API client, page controllers and forms. Every operation that can
// fail returns an *Error (possibly wrapped) so callers can branch on Kind
// instead of string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindDecode is a persisted token that could not be decoded. It is
	// absorbed by the session service and treated as logged out.
	KindDecode
	// KindRequest is a transport error or a non-2xx backend response.
	KindRequest
	// KindValidation blocks a submission before any request is sent.
	KindValidation
	KindAuthentication
	KindRegistration
	// KindUnauthenticated is a mutation attempted without a session.
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindRequest:
		return "request"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindRegistration:
		return "registration"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Status != 0 && e.Op != "":
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op, message string) *Error {
	return New(KindValidation, op, message)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// UserMessage is the text shown to a person for err. Backend messages are
// preferred over wrapped transport detail.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindRequest:
		return "The request could not be completed."
	case KindAuthentication:
		return "Invalid email or password."
	case KindRegistration:
		return "Registration failed."
	case KindUnauthenticated:
		return "Please log in first."
	default:
		return e.Error()
	}
}
