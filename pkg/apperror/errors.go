package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrForbidden         = errors.New("forbidden")
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrBadRequest        = errors.New("bad request")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTags       = errors.New("invalid tags")
	ErrInternal          = errors.New("internal server error")
	ErrStorage           = errors.New("media storage failure")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Conflicts
	ErrAccountExists      = errors.New("username or email already registered")
	ErrDuplicateReport    = errors.New("content already reported")
	ErrDuplicateVote      = errors.New("already voted on this content")
	ErrAlreadyRevealed    = errors.New("answer already revealed")
	ErrContentUnavailable = errors.New("content is not available for voting")
	ErrConflict           = errors.New("conflict")
)

// Stable machine readable error codes returned next to the message.
const (
	CodeValidation         = "validation_error"
	CodeInvalidTags        = "invalid_tags"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeAccountDisabled    = "account_disabled"
	CodeNotFound           = "not_found"
	CodeAccountExists      = "account_exists"
	CodeDuplicateReport    = "duplicate_report"
	CodeDuplicateVote      = "duplicate_vote"
	CodeAlreadyRevealed    = "already_revealed"
	CodeContentUnavailable = "content_unavailable"
	CodeConflict           = "conflict"
	CodeRateLimited        = "rate_limited"
	CodeStorage            = "storage_error"
	CodeInternal           = "internal_error"
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation wraps a field level message as an invalid input error.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrInvalidInput)
}

type mapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first sentinel matched by errors.Is wins.
var mappings = []mapping{
	{ErrInvalidTags, http.StatusBadRequest, CodeInvalidTags},
	{ErrInvalidInput, http.StatusBadRequest, CodeValidation},
	{ErrBadRequest, http.StatusBadRequest, CodeValidation},
	{ErrInvalidCredential, http.StatusUnauthorized, CodeInvalidCredentials},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{ErrAccountDisabled, http.StatusForbidden, CodeAccountDisabled},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrAccountExists, http.StatusBadRequest, CodeAccountExists},
	{ErrDuplicateReport, http.StatusBadRequest, CodeDuplicateReport},
	{ErrDuplicateVote, http.StatusConflict, CodeDuplicateVote},
	{ErrAlreadyRevealed, http.StatusConflict, CodeAlreadyRevealed},
	{ErrContentUnavailable, http.StatusConflict, CodeContentUnavailable},
	{ErrConflict, http.StatusConflict, CodeConflict},
	{ErrRateLimitExceeded, http.StatusTooManyRequests, CodeRateLimited},
	{ErrStorage, http.StatusInternalServerError, CodeStorage},
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}

	// Default to internal server error
	return http.StatusInternalServerError
}

// MapErrorToCode returns the stable error code clients should match on.
func MapErrorToCode(err error) string {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.code
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case http.StatusBadRequest:
			return CodeValidation
		case http.StatusUnauthorized:
			return CodeUnauthorized
		case http.StatusForbidden:
			return CodeForbidden
		case http.StatusNotFound:
			return CodeNotFound
		case http.StatusConflict:
			return CodeConflict
		}
	}

	return CodeInternal
}
