package errors

import (
	stderrors "errors"
	"fmt"
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

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context. The code of a wrapped
// AppError is preserved so callers can still classify the failure.
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
		Code:    CodeInternalError,
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
	var appErr *AppError
	if stderrors.As(err, &appErr) {
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

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeMalformedAnswerLine  = "MALFORMED_ANSWER_LINE"
	CodeInvalidPattern       = "INVALID_PATTERN"
	CodeInvalidCellReference = "INVALID_CELL_REFERENCE"
	CodeTargetNotFound       = "TARGET_NOT_FOUND"
	CodeWorkbookUnreadable   = "WORKBOOK_UNREADABLE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// MalformedAnswerLine reports an answer key line that does not carry
// SHEET, CELL and PATTERN fields.
func MalformedAnswerLine(lineNo, fields int) *AppError {
	return Newf(CodeMalformedAnswerLine,
		"answer key line %d: expected SHEET<TAB>CELL<TAB>PATTERN, got %d field(s)", lineNo, fields)
}

func InvalidPattern(sheet, cell, pattern string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidPattern,
		Message: fmt.Sprintf("invalid pattern %q for %s!%s", pattern, sheet, cell),
		Cause:   cause,
	}
}

func InvalidCellReference(ref string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidCellReference,
		Message: fmt.Sprintf("invalid cell reference %q", ref),
		Cause:   cause,
	}
}

func TargetNotFound(path string) *AppError {
	return Newf(CodeTargetNotFound, "No such file or directory: %s", path)
}

func WorkbookUnreadable(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeWorkbookUnreadable,
		Message: fmt.Sprintf("failed to open workbook %s", path),
		Cause:   cause,
	}
}
