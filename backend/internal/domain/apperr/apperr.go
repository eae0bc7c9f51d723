package apperr

import (
	"errors"
	"fmt"
)

const GenericMessage = "could not complete action, try again"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidPetitionState = errors.New("petition is not in a state that allows this action")
	ErrDuplicateOpenAppeal  = errors.New("an open appeal already exists for this petition")
	ErrUnauthorizedAccess   = errors.New("unauthorized access")
	ErrValidation           = errors.New("validation error")
	ErrDependencyFailure    = errors.New("dependency failure")
	ErrInvalidTransition    = errors.New("status transition is not allowed")
	ErrConflict             = errors.New("record was modified concurrently")
	ErrAppealClosed         = errors.New("appeal is closed")
	ErrDuplicateSignature   = errors.New("petition already signed by this signer")
	ErrRateLimited          = errors.New("too many requests")
)

type ValidationError struct {
	Field   string
	Message string
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DependencyError wraps a failing store or provider call.
type DependencyError struct {
	Op  string
	Err error
}

func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	var dep *DependencyError
	if errors.As(err, &dep) {
		return err
	}
	return &DependencyError{Op: op, Err: err}
}

// Store passes domain errors through and wraps anything else as a dependency failure.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range domainSentinels {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	if errors.Is(err, ErrValidation) {
		return err
	}
	return Dependency(op, err)
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func (e *DependencyError) Is(target error) bool {
	return target == ErrDependencyFailure
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrDependencyFailure):
		return GenericMessage
	default:
		return rootMessage(err)
	}
}

var domainSentinels = []error{
	ErrNotFound,
	ErrInvalidPetitionState,
	ErrDuplicateOpenAppeal,
	ErrUnauthorizedAccess,
	ErrInvalidTransition,
	ErrConflict,
	ErrAppealClosed,
	ErrDuplicateSignature,
	ErrRateLimited,
}

func rootMessage(err error) string {
	for _, sentinel := range domainSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return GenericMessage
}
