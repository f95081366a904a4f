package model

import (
	"fmt"
	"runtime"
	"time"
)

// ErrorCode classifies a CoreError by how the rest of the system must
// react to it: drop and log, retry internally, or tear down a session.
type ErrorCode string

const (
	// ErrSchema marks a payload that failed to decode against the
	// venue's documented wire shape.
	ErrSchema ErrorCode = "SCHEMA_ERROR"

	// ErrStaleUpdate marks an orderbook delta whose sequence id trails
	// the book's current sequence id. Dropped, never buffered.
	ErrStaleUpdate ErrorCode = "STALE_UPDATE"

	// ErrValidation marks a value that decoded but violates a model
	// invariant (negative size, unknown enum, empty symbol).
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// ErrTransport marks a network-level failure: dial, timeout, reset.
	ErrTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrRateLimited marks a venue 429 / rate-limit response code.
	ErrRateLimited ErrorCode = "RATE_LIMITED"

	// ErrVenueFatal marks a venue error classified non-retryable.
	ErrVenueFatal ErrorCode = "VENUE_FATAL"

	// ErrAuthExpired marks an expired listen key or signature window.
	ErrAuthExpired ErrorCode = "AUTH_EXPIRED"
)

// CoreError is the structured error type carried across every package
// in this module. Venue adapters, the orderbook, and the OMS all wrap
// their failures in a CoreError so callers can branch on Code instead
// of parsing messages.
type CoreError struct {
	Code      ErrorCode              `json:"code"`
	Venue     string                 `json:"venue,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s[%s]: %s (caused by: %v)", e.Code, e.Venue, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Code, e.Venue, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches structured context, e.g. WithDetail("seq_id", n).
func (e *CoreError) WithDetail(key string, value interface{}) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error this CoreError wraps.
func (e *CoreError) WithCause(cause error) *CoreError {
	e.Cause = cause
	return e
}

// New creates a CoreError attributed to venue, capturing the caller's
// file/line for diagnostics.
func New(code ErrorCode, venue, message string) *CoreError {
	_, file, line, _ := runtime.Caller(1)
	return &CoreError{
		Code:      code,
		Venue:     venue,
		Message:   message,
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
	}
}

// Newf creates a CoreError with a formatted message.
func Newf(code ErrorCode, venue, format string, args ...interface{}) *CoreError {
	_, file, line, _ := runtime.Caller(1)
	e := New(code, venue, fmt.Sprintf(format, args...))
	e.File, e.Line = file, line
	return e
}

// Wrap wraps an existing error in a CoreError. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, venue, message string) *CoreError {
	if err == nil {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	return &CoreError{
		Code:      code,
		Venue:     venue,
		Message:   message,
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
		Cause:     err,
	}
}

// Is reports whether err is a CoreError carrying code.
func Is(err error, code ErrorCode) bool {
	var ce *CoreError
	if As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// As walks err's Unwrap chain looking for a *CoreError.
func As(err error, target **CoreError) bool {
	if err == nil {
		return false
	}
	if ce, ok := err.(*CoreError); ok {
		*target = ce
		return true
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return As(unwrapper.Unwrap(), target)
	}
	return false
}

// IsRetryable reports whether the system should retry the operation
// that produced err internally (rate limits, transport blips) rather
// than surface it to the caller or tear down the session.
func IsRetryable(err error) bool {
	var ce *CoreError
	if !As(err, &ce) {
		return false
	}
	switch ce.Code {
	case ErrTransport, ErrRateLimited:
		return true
	default:
		return false
	}
}

// IsSessionFatal reports whether err should terminate the owning
// venue session rather than be logged and dropped.
func IsSessionFatal(err error) bool {
	var ce *CoreError
	if !As(err, &ce) {
		return false
	}
	switch ce.Code {
	case ErrVenueFatal, ErrAuthExpired:
		return true
	default:
		return false
	}
}
