package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind classifies entry-point failures. Every failure aborts the
// whole invocation and discards its state changes; the kind is what the
// caller gets to act on.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindUnauthorized
	KindNotOwner
	KindApprovalMismatch
	KindInvalidInput
	KindInsufficientFunds
	KindInsufficientStorageDeposit
	KindDepositRequired
	KindInvariantViolation
	KindPaused
	KindMustBeCrossCall
	KindOwnerMismatch
)

// String returns the wire name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotOwner:
		return "NotOwner"
	case KindApprovalMismatch:
		return "ApprovalMismatch"
	case KindInvalidInput:
		return "InvalidInput"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindInsufficientStorageDeposit:
		return "InsufficientStorageDeposit"
	case KindDepositRequired:
		return "DepositRequired"
	case KindInvariantViolation:
		return "InvariantViolation"
	case KindPaused:
		return "Paused"
	case KindMustBeCrossCall:
		return "MustBeCrossCall"
	case KindOwnerMismatch:
		return "OwnerMismatch"
	default:
		return "Internal"
	}
}

// Error is a classified entry-point failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Errorf builds a classified error.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain; unclassified errors are
// internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
