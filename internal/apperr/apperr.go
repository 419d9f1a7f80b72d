package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the turn boundary can decide what the user sees.
type Kind string

const (
	// KindValidation means the inbound text failed the current state's rule
	KindValidation Kind = "VALIDATION"

	// KindLookupFallback marks a reference lookup that was answered with a default
	KindLookupFallback Kind = "LOOKUP_FALLBACK"

	// KindComputation means the scoring or projection engine could not produce a result
	KindComputation Kind = "COMPUTATION"

	// KindPersistence means the session store could not be read or written
	KindPersistence Kind = "PERSISTENCE"

	// KindConflict means a versioned write lost against a concurrent writer
	KindConflict Kind = "CONFLICT"

	// KindNotFound means the requested record does not exist
	KindNotFound Kind = "NOT_FOUND"
)

// Error is the application error carried across package boundaries
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Computation(message string, err error) *Error {
	return &Error{Kind: KindComputation, Message: message, Err: err}
}

func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
