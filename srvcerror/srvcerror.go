package srvcerror

import (
	"context"
	"errors"
	"net/http"
)

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int  // optional, for HTTP responses
	retryable  bool // caller may retry with backoff
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) Unwrap() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func (e *Error) Retryable() bool {
	return e.retryable
}

func (e *Error) SetRetryable() *Error {
	e.retryable = true
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

// HasCode reports whether err is a service error with the given code.
func HasCode(err error, code string) bool {
	srvcErr := &Error{}
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode == code
	}
	return false
}

func IsRetryable(err error) bool {
	srvcErr := &Error{}
	if errors.As(err, &srvcErr) {
		return srvcErr.retryable
	}
	return false
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeStorageUnavailable = "storage_unavailable"

// ErrStorageUnavailable wraps a failed or timed out storage round-trip. It is
// never a policy decision, callers retry it.
func ErrStorageUnavailable(cause error) *Error {
	msg := "storage is temporarily unavailable, please retry"
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "storage did not respond in time, please retry"
	}
	return New(ErrCodeStorageUnavailable, msg).
		SetHttpStatusCode(http.StatusServiceUnavailable).
		SetRetryable().
		SetDebug(cause)
}

const ErrCodeInvalidRequest = "invalid_request"

func ErrInvalidRequest(msg string) *Error {
	return New(ErrCodeInvalidRequest, msg).
		SetHttpStatusCode(http.StatusBadRequest)
}
