package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError covers empty names, non-positive amounts, and any other
// caller-input rejection the service layer performs before touching
// storage.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// AccountNotFoundError wraps a missing account id.
type AccountNotFoundError struct {
	ID uuid.UUID
}

func (e AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.ID)
}

// AccessDeniedError is raised when a scoped API key's request references an
// account outside its scope.
type AccessDeniedError struct {
	Msg string
}

func (e AccessDeniedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "access denied"
}
