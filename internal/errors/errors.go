package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tally error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrInvalidToken    ErrorCode = "INVALID_TOKEN"    // 400
	ErrInvalidSettings ErrorCode = "INVALID_SETTINGS" // 422
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrCancelled       ErrorCode = "CANCELLED"        // 499
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// TallyError represents a structured error with code, status, and details.
type TallyError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TallyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TallyError {
	return &TallyError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidToken creates a 400 error for keypad input that is not a token.
func NewInvalidToken(token string) *TallyError {
	return &TallyError{
		Code:    ErrInvalidToken,
		Status:  400,
		Message: fmt.Sprintf("not a calculator token: %q", token),
		Details: map[string]any{"token": token},
	}
}

// NewInvalidSettings creates a 422 error for a settings value outside its allowed set.
func NewInvalidSettings(field, value string, allowed []string) *TallyError {
	return &TallyError{
		Code:    ErrInvalidSettings,
		Status:  422,
		Message: fmt.Sprintf("invalid %s %q", field, value),
		Details: map[string]any{"field": field, "value": value, "allowed": allowed},
	}
}

// NewNotFound creates a 404 error for a missing history record.
func NewNotFound(identifier string) *TallyError {
	return &TallyError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(op string) *TallyError {
	return &TallyError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *TallyError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TallyError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a TallyError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TallyError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}
