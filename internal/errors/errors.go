// Package errors provides structured error types for the benchmark harness.
// All errors include a category, code, and message for consistent handling
// and exit-code mapping across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by harness component.
type ErrorCategory string

const (
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryData     ErrorCategory = "DATA"
	ErrCategoryRead     ErrorCategory = "READ"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryVerify   ErrorCategory = "VERIFY"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Config codes
	CodeInvalidConfig    = "INVALID_CONFIG"
	CodeUnknownContender = "UNKNOWN_CONTENDER"

	// Data codes
	CodeMissingData = "MISSING_DATA"

	// Read codes
	CodeReadFailed     = "READ_FAILED"
	CodeColumnNotFound = "COLUMN_NOT_FOUND"

	// Storage codes
	CodeObjectNotFound = "OBJECT_NOT_FOUND"
	CodeStatFailed     = "STAT_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeUploadFailed   = "UPLOAD_FAILED"

	// Verify codes
	CodeResultMismatch = "RESULT_MISMATCH"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// BenchError is the structured error type used throughout the harness.
type BenchError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *BenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *BenchError) Is(target error) bool {
	var t *BenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new BenchError.
func New(category ErrorCategory, code, message string) *BenchError {
	return &BenchError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new BenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *BenchError {
	return &BenchError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCategory(err error) ErrorCategory {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCode(err error) string {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsConfig reports whether the error chain contains a configuration error.
func IsConfig(err error) bool {
	return GetCategory(err) == ErrCategoryConfig
}

// IsMissingData reports whether the error chain contains a missing-data error.
func IsMissingData(err error) bool {
	return GetCode(err) == CodeMissingData
}

// Convenience constructors for common errors.

func NewConfigError(code, message string) *BenchError {
	return New(ErrCategoryConfig, code, message)
}

func NewMissingDataError(message string) *BenchError {
	return New(ErrCategoryData, CodeMissingData, message)
}

func NewReadError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryRead, CodeReadFailed, message, cause)
}

func NewStorageError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewVerifyError(message string) *BenchError {
	return New(ErrCategoryVerify, CodeResultMismatch, message)
}

func NewInternalError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
