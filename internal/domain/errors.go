package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories the services report.
// Handlers dispatch on the kind, never on the message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindInvalidState
	KindInvalidInput
	KindForbidden
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidInput:
		return "invalid_input"
	case KindForbidden:
		return "forbidden"
	case KindStore:
		return "store_error"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Msg: msg}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func StoreError(msg string, err error) *Error {
	return &Error{Kind: KindStore, Msg: msg, Err: err}
}

// KindOf extracts the kind from anywhere in the wrap chain. Errors that
// never went through this package count as store failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStore
}
