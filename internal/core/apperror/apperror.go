package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeDuplicateTimestamp = "DUPLICATE_TIMESTAMP"
	CodeInvalidSequence    = "INVALID_SEQUENCE"
	CodeOutsideBuffer      = "OUTSIDE_BUFFER"
	CodeOverlap            = "OVERLAP"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string // Error code (e.g., OVERLAP)
	Message    string // User facing message
	HTTPStatus int
	Err        error // Wrapped cause, never shown to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// Validation builds a 422 failure with the given code.
func Validation(code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...), http.StatusUnprocessableEntity)
}

var (
	ErrNotFound = New(CodeNotFound, "Time clock event not found", http.StatusNotFound)
	ErrInternal = New(CodeInternalError, "Something went wrong, please try again", http.StatusInternalServerError)
)

// Internal wraps an unexpected failure behind the generic message.
func Internal(err error) *AppError {
	return Wrap(err, ErrInternal.Code, ErrInternal.Message, ErrInternal.HTTPStatus)
}

// From extracts an AppError, mapping anything else to the generic failure.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsValidation reports whether err is a client-fixable 422 failure.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusUnprocessableEntity
}
