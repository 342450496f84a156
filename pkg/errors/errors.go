// Package errors defines the sentinel errors shared by the index builders,
// the retrievers and the HTTP layer, plus an AppError wrapper that carries an
// HTTP status code to the edge.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyCorpus         = errors.New("corpus has no entries")
	ErrVocabularyExhausted = errors.New("no terms remain after document frequency pruning")
	ErrIndexNotBuilt       = errors.New("index not built")
	ErrIndexMisaligned     = errors.New("index rows are not aligned with the corpus")
	ErrIndexCorrupt        = errors.New("index file is corrupt")
	ErrInvalidParams       = errors.New("invalid index parameters")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrEncoderUnavailable  = errors.New("encoder unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexNotBuilt),
		errors.Is(err, ErrIndexMisaligned),
		errors.Is(err, ErrIndexCorrupt),
		errors.Is(err, ErrEncoderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
