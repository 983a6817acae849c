package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure for callers that need to branch on cause
// rather than on message text.
type ErrorCode string

const (
	// Transport failures. These are retried by the request executor and only
	// surface once the retry budget is exhausted.
	ErrCodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"

	// Protocol and shape failures. Never retried.
	ErrCodeBadEndpoint     ErrorCode = "BAD_ENDPOINT"
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	ErrCodeDecodingFailed  ErrorCode = "DECODING_FAILED"

	// Auth failures. Trigger session invalidation as a side effect.
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"

	// Application failures carry the HTTP status and the server's own message.
	ErrCodeClient ErrorCode = "CLIENT_ERROR"
	ErrCodeServer ErrorCode = "SERVER_ERROR"

	// Local failures degrade gracefully instead of blocking the user.
	ErrCodeProductNotFound ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeEmptyCart       ErrorCode = "EMPTY_CART"
)

// Error is the domain-level error shared across all layers of the client.
type Error struct {
	Code    ErrorCode
	Message string
	Status  int // HTTP status, set for CLIENT_ERROR and SERVER_ERROR
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewHTTPError builds an application error carrying the HTTP status and the
// message parsed from the server response body.
func NewHTTPError(code ErrorCode, status int, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// IsDomainError reports whether err carries the given code.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf extracts the classification of err, or empty string for foreign errors.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ""
}

// Retryable reports whether err is a transient transport failure that is
// expected to succeed on retry without any change in request content.
// HTTP-level error statuses are never retryable.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeNetworkUnavailable, ErrCodeTimeout:
		return true
	}
	return false
}

// UserMessage maps a failure to a human-readable string for display. Kept
// separate from control flow so presentation text never drives branching.
func UserMessage(err error) string {
	var dErr *Error
	if !errors.As(err, &dErr) {
		return "An unexpected error occurred"
	}
	switch dErr.Code {
	case ErrCodeNetworkUnavailable:
		return "No internet connection available"
	case ErrCodeTimeout:
		return "Request timed out. Please try again"
	case ErrCodeBadEndpoint:
		return "Invalid server URL configuration"
	case ErrCodeInvalidResponse:
		return "Invalid server response"
	case ErrCodeDecodingFailed:
		return "Failed to process server response"
	case ErrCodeUnauthorized:
		return "Invalid username or password"
	case ErrCodeTokenExpired:
		return "Your session has expired. Please log in again."
	case ErrCodeAuthenticationFailed:
		return "Authentication failed. Please check your credentials."
	case ErrCodeClient, ErrCodeServer:
		return fmt.Sprintf("Server error (%d): %s", dErr.Status, dErr.Message)
	case ErrCodeProductNotFound:
		return "Product not found"
	case ErrCodeEmptyCart:
		return "Your cart is empty"
	}
	return "An unexpected error occurred"
}
