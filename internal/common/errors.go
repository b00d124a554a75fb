package common

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// BadRequest wraps err as a 400 validation failure.
func BadRequest(message string, err error, details any) *AppError {
	e := NewAppError("BAD_REQUEST", message, http.StatusBadRequest, err)
	e.Details = details
	return e
}

// NotFound wraps err as a 404.
func NotFound(message string, err error) *AppError {
	return NewAppError("NOT_FOUND", message, http.StatusNotFound, err)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// Classifier maps domain sentinel errors to an HTTP status and code.
type Classifier func(err error) (status int, code string, ok bool)

// WriteError renders err using AppError metadata first, then the classifiers,
// falling back to a 500. Unclassified errors are logged through the request's
// zerolog context logger and never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error, classifiers ...Classifier) {
	if err == nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		message := appErr.Message
		if message == "" {
			message = appErr.Error()
		}
		JSONError(w, status, code, message, appErr.Details)
		return
	}
	for _, classify := range classifiers {
		if classify == nil {
			continue
		}
		if status, code, ok := classify(err); ok {
			JSONError(w, status, code, err.Error(), nil)
			return
		}
	}
	if r != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

// Sentinel builds a Classifier matching target with errors.Is.
func Sentinel(target error, status int, code string) Classifier {
	return func(err error) (int, string, bool) {
		if errors.Is(err, target) {
			return status, code, true
		}
		return 0, "", false
	}
}
