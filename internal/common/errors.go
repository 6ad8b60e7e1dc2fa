// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the persistence core. Callers match them with errors.Is.
var (
	// ErrNotInitialized is returned by any store method used before Init completed.
	ErrNotInitialized = errors.New("database not initialized")
	// ErrValidation reports invalid input such as a non-positive amount.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate reports an id or unique-name collision.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrProtectedCategory reports an attempt to delete a system category.
	ErrProtectedCategory = errors.New("system categories cannot be deleted")
	// ErrInUse reports an attempt to delete a category still referenced by expenses.
	ErrInUse = errors.New("category is used by existing expenses")
	// ErrNotFound reports a missing row where existence is required.
	ErrNotFound = errors.New("not found")
	// ErrStorage reports an underlying engine failure.
	ErrStorage = errors.New("storage failure")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StorageError wraps an error returned by the database engine.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorage) match any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err as a StorageError for the named operation.
// A nil err yields nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns a short message suitable for display for the given error.
func UserMessage(err error) string {
	var userErr *UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.Is(err, ErrNotInitialized):
		return "the database is not ready yet"
	case errors.Is(err, ErrDuplicate):
		return "category already exists"
	case errors.Is(err, ErrProtectedCategory):
		return "system categories cannot be deleted"
	case errors.Is(err, ErrInUse):
		return "category is used by existing expenses"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrValidation):
		return "invalid input"
	case errors.Is(err, ErrStorage):
		return "the database reported an error"
	default:
		return err.Error()
	}
}
