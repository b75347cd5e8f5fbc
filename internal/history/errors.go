package history

import (
	"errors"
	"fmt"
)

// Error represents a history engine failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes history engine errors.
type ErrorCode string

const (
	// ErrCodeNothingToUndo indicates undo was called with an empty
	// committed stack.
	ErrCodeNothingToUndo ErrorCode = "NOTHING_TO_UNDO"

	// ErrCodeNothingToRedo indicates redo was called with an empty
	// redo buffer.
	ErrCodeNothingToRedo ErrorCode = "NOTHING_TO_REDO"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNothingToUndo returns true if the error is an empty-undo error.
// Uses errors.As to handle wrapped errors.
func IsNothingToUndo(err error) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == ErrCodeNothingToUndo
	}
	return false
}

// IsNothingToRedo returns true if the error is an empty-redo error.
func IsNothingToRedo(err error) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == ErrCodeNothingToRedo
	}
	return false
}

// StoreError represents a persistence failure crossing the adapter
// boundary: file or database I/O, or a history file that cannot be parsed.
type StoreError struct {
	// Code identifies the error category.
	Code StoreErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// StoreErrorCode categorizes persistence errors.
type StoreErrorCode string

const (
	// ErrCodeIO indicates the history file or database could not be
	// read or written.
	ErrCodeIO StoreErrorCode = "IO_ERROR"

	// ErrCodeParse indicates persisted history exists but could not be
	// decoded. The engine must start from empty history rather than
	// partially apply a corrupt file.
	ErrCodeParse StoreErrorCode = "PARSE_ERROR"
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewIOError creates a StoreError wrapping an I/O failure.
func NewIOError(message string, err error) *StoreError {
	return &StoreError{Code: ErrCodeIO, Message: message, Err: err}
}

// NewParseError creates a StoreError for undecodable persisted history.
func NewParseError(message string, err error) *StoreError {
	return &StoreError{Code: ErrCodeParse, Message: message, Err: err}
}

// IsIOError returns true if the error is a persistence I/O error.
func IsIOError(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeIO
	}
	return false
}

// IsParseError returns true if the error is a persistence parse error.
func IsParseError(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == ErrCodeParse
	}
	return false
}
