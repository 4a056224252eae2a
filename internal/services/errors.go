package services

import (
	"fmt"

	"taskfan/internal/authz"
)

type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
)

// MutationError is the single failure type the orchestrator returns. Kind
// drives the HTTP status at the handler boundary; Reason carries the
// authorization engine's denial code so clients can branch on it.
type MutationError struct {
	Kind    ErrorKind
	Reason  authz.Reason
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func NotFoundError(message string) *MutationError {
	return &MutationError{Kind: KindNotFound, Reason: authz.ReasonMissingReference, Message: message}
}

func ForbiddenError(decision authz.Decision) *MutationError {
	return &MutationError{Kind: KindForbidden, Reason: decision.Reason, Message: decision.Message}
}

func ConflictError(message string) *MutationError {
	return &MutationError{Kind: KindConflict, Message: message}
}

func ValidationError(message string) *MutationError {
	return &MutationError{Kind: KindValidation, Message: message}
}

func UnexpectedError(message string, err error) *MutationError {
	return &MutationError{Kind: KindUnexpected, Message: message, Err: err}
}
