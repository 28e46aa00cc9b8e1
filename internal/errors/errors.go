package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"tabml/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code of the outermost AppError, or the code derived
// from the domain sentinel the error wraps.
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeFor(err)
}

// Predefined error codes
const (
	CodeConfigInvalid             = "CONFIG_INVALID"
	CodeDatabaseError             = "DATABASE_ERROR"
	CodeValidationError           = "VALIDATION_ERROR"
	CodeNotFound                  = "NOT_FOUND"
	CodeAlreadyExists             = "ALREADY_EXISTS"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeInternalError             = "INTERNAL_ERROR"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeMissingParameter          = "MISSING_PARAMETER"
	CodeUnsupportedFormat         = "UNSUPPORTED_FORMAT"
	CodeInvalidDataset            = "INVALID_DATASET"
	CodeEmptyDataset              = "EMPTY_DATASET"
	CodeColumnNotFound            = "COLUMN_NOT_FOUND"
	CodeInvalidModel              = "INVALID_MODEL"
	CodeUnsupportedModelForTarget = "UNSUPPORTED_MODEL_FOR_TARGET"
	CodeInsufficientData          = "INSUFFICIENT_DATA"
	CodeTrainingFailed            = "TRAINING_FAILED"
)

var domainCodes = []struct {
	sentinel error
	code     string
}{
	{core.ErrMissingParameter, CodeMissingParameter},
	{core.ErrInvalidParameter, CodeInvalidInput},
	{core.ErrNotFound, CodeNotFound},
	{core.ErrAlreadyExists, CodeAlreadyExists},
	{core.ErrUnsupportedFormat, CodeUnsupportedFormat},
	{core.ErrInvalidDataset, CodeInvalidDataset},
	{core.ErrEmptyDataset, CodeEmptyDataset},
	{core.ErrColumnNotFound, CodeColumnNotFound},
	{core.ErrInvalidModel, CodeInvalidModel},
	{core.ErrUnsupportedModelForTarget, CodeUnsupportedModelForTarget},
	{core.ErrInsufficientData, CodeInsufficientData},
	{core.ErrTrainingFailed, CodeTrainingFailed},
}

// CodeFor maps a domain error to its application code
func CodeFor(err error) string {
	if err == nil {
		return ""
	}
	for _, dc := range domainCodes {
		if stderrors.Is(err, dc.sentinel) {
			return dc.code
		}
	}
	return CodeInternalError
}

// HTTPStatus returns the response status for an error at the transport boundary
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeMissingParameter, CodeInvalidInput, CodeValidationError, CodeUnsupportedFormat, CodeEmptyDataset, CodeAlreadyExists,
		CodeColumnNotFound, CodeInvalidModel, CodeUnsupportedModelForTarget, CodeInsufficientData:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
