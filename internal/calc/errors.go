package calc

import (
	"errors"
	"fmt"
)

// EvalError represents a failure detected while validating or executing
// an arithmetic operation.
//
// Evaluation errors include:
//   - Input too large: an operand exceeds the configured magnitude bound
//   - Division by zero: divide, int_divide, modulus, percentage with b == 0
//   - Invalid root: zeroth root, or even root of a negative number
//   - Out of range: the result cannot be represented at the configured precision
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// Op identifies the operation being evaluated, when known.
	Op Op
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeInputTooLarge indicates an operand exceeds the configured bound.
	ErrCodeInputTooLarge EvalErrorCode = "INPUT_TOO_LARGE"

	// ErrCodeDivisionByZero indicates a zero divisor.
	ErrCodeDivisionByZero EvalErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeInvalidRoot indicates a root with no real value (zeroth root,
	// or an even root of a negative radicand).
	ErrCodeInvalidRoot EvalErrorCode = "INVALID_ROOT"

	// ErrCodeUnknownOperation indicates an unrecognized operation name.
	ErrCodeUnknownOperation EvalErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeOutOfRange indicates the result overflows what the evaluator
	// can round at the configured precision.
	ErrCodeOutOfRange EvalErrorCode = "RESULT_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInputTooLarge returns true if the error is an operand bound violation.
// Uses errors.As to handle wrapped errors.
func IsInputTooLarge(err error) bool {
	return hasCode(err, ErrCodeInputTooLarge)
}

// IsDivisionByZero returns true if the error is a zero-divisor error.
func IsDivisionByZero(err error) bool {
	return hasCode(err, ErrCodeDivisionByZero)
}

// IsInvalidRoot returns true if the error is an invalid root error.
func IsInvalidRoot(err error) bool {
	return hasCode(err, ErrCodeInvalidRoot)
}

// IsUnknownOperation returns true if the error is an unknown operation error.
func IsUnknownOperation(err error) bool {
	return hasCode(err, ErrCodeUnknownOperation)
}

func hasCode(err error, code EvalErrorCode) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// newInputTooLargeError creates an EvalError for an operand bound violation.
func newInputTooLargeError(op Op, operand, bound string) *EvalError {
	return &EvalError{
		Code:    ErrCodeInputTooLarge,
		Message: fmt.Sprintf("operand %s exceeds maximum input value %s", operand, bound),
		Op:      op,
	}
}

// newDivisionByZeroError creates an EvalError for a zero divisor.
func newDivisionByZeroError(op Op) *EvalError {
	return &EvalError{
		Code:    ErrCodeDivisionByZero,
		Message: "division by zero is not allowed",
		Op:      op,
	}
}

// newInvalidRootError creates an EvalError for a root with no real value.
func newInvalidRootError(msg string) *EvalError {
	return &EvalError{
		Code:    ErrCodeInvalidRoot,
		Message: msg,
		Op:      OpRoot,
	}
}
