package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed contact submission.
type ErrorKind string

const (
	KindMalformedRequest   ErrorKind = "malformed_request"
	KindMissingField       ErrorKind = "missing_field"
	KindInvalidEmail       ErrorKind = "invalid_email"
	KindInvalidSenderData  ErrorKind = "invalid_sender_data"
	KindInvalidMessageData ErrorKind = "invalid_message_data"
	KindPersistence        ErrorKind = "persistence_error"
	KindInternal           ErrorKind = "internal_error"
)

// Error is a hard failure of the contact workflow. Nothing was committed when
// it is returned.
type Error struct {
	Kind ErrorKind
	// Detail is a short human-readable diagnostic safe to show to clients.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// IsClientError reports whether the kind is caused by the submitted data.
func (k ErrorKind) IsClientError() bool {
	switch k {
	case KindMalformedRequest, KindMissingField, KindInvalidEmail, KindInvalidSenderData, KindInvalidMessageData:
		return true
	}
	return false
}

// KindOf returns the kind of err, or KindInternal for errors not produced by this package.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind ErrorKind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}
