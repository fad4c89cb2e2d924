package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error identifier returned to API callers.
type Code string

const (
	CodeInvalidFileType  Code = "INVALID_FILE_TYPE"
	CodeFileTooLarge     Code = "FILE_TOO_LARGE"
	CodeParseError       Code = "PARSE_ERROR"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeComicNotFound    Code = "COMIC_NOT_FOUND"
	CodeGenerationFailed Code = "GENERATION_FAILED"
	CodeExternalAPI      Code = "EXTERNAL_API_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeInvalidFileType:  http.StatusBadRequest,
	CodeFileTooLarge:     http.StatusBadRequest,
	CodeParseError:       http.StatusBadRequest,
	CodeInvalidRequest:   http.StatusBadRequest,
	CodeComicNotFound:    http.StatusNotFound,
	CodeGenerationFailed: http.StatusInternalServerError,
	CodeExternalAPI:      http.StatusBadGateway,
	CodeInternal:         http.StatusInternalServerError,
}

// Error is an application error carrying a Code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the code to an HTTP status.
func (e *Error) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to err. A nil err still yields an Error.
func Wrap(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func InvalidFileType(filename string) *Error {
	return New(CodeInvalidFileType, "unsupported file type: %s", filename)
}

func FileTooLarge(limit int64) *Error {
	return New(CodeFileTooLarge, "file exceeds maximum size of %d bytes", limit)
}

func ParseError(format string, args ...any) *Error {
	return New(CodeParseError, format, args...)
}

func ComicNotFound(hash string) *Error {
	return New(CodeComicNotFound, "comic %s not found", hash)
}

func GenerationFailed(err error, format string, args ...any) *Error {
	return Wrap(err, CodeGenerationFailed, format, args...)
}

func ExternalAPI(err error, service string) *Error {
	return Wrap(err, CodeExternalAPI, "%s request failed", service)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
