package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. The transport maps each kind to a status code.
type Kind string

const (
	KindMissingCredential   Kind = "MISSING_CREDENTIAL"
	KindMalformedCredential Kind = "MALFORMED_CREDENTIAL"
	KindInvalidCredential   Kind = "INVALID_CREDENTIAL"
	KindExpiredCredential   Kind = "EXPIRED_CREDENTIAL"
	KindUnknownUser         Kind = "UNKNOWN_USER"
	KindInvalidLogin        Kind = "INVALID_LOGIN"
	KindForbiddenRole       Kind = "FORBIDDEN_ROLE"

	KindInvalidInput           Kind = "INVALID_INPUT"
	KindInvalidLineInput       Kind = "INVALID_LINE_INPUT"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindInvalidStatus          Kind = "INVALID_STATUS"

	KindCategoryNotFound Kind = "CATEGORY_NOT_FOUND"
	KindMenuNotFound     Kind = "MENU_NOT_FOUND"
	KindOrderNotFound    Kind = "ORDER_NOT_FOUND"

	KindDuplicateIdentity Kind = "DUPLICATE_IDENTITY"
	KindInternal          Kind = "INTERNAL"
)

// Error is the error type returned by every service operation.
// Line is the 1-based index of the offending order line, or 0.
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// internalError hides err behind a generic message
func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: "failed to " + op, Err: err}
}

// lineError names the offending line only when the batch has more than one
func lineError(kind Kind, line, total int, message string) *Error {
	if total <= 1 {
		return &Error{Kind: kind, Message: message}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf("line %d: %s", line, message), Line: line}
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
