package store

import (
	"errors"
)

// StoreError represents a domain error from metadata store or service
// operations.
//
// These are business errors (row not found, protected row, wrong server)
// as opposed to infrastructure errors (disk failure, corrupted value).
// The ROP layer translates StoreError codes into wire return values.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Server names the owning server when Code is ErrWrongServer
	Server string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Server != "" {
		return e.Message + ": " + e.Server
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrGeneric is an unspecified failure (ecError)
	ErrGeneric ErrorCode = iota

	// ErrNotFound indicates the requested object doesn't exist
	ErrNotFound

	// ErrNotSupported indicates the operation is not valid for the session kind
	ErrNotSupported

	// ErrInvalidParameter indicates malformed input
	ErrInvalidParameter

	// ErrAccessDenied indicates the caller may not modify the object
	ErrAccessDenied

	// ErrRPCFormat indicates an out of range request field
	ErrRPCFormat

	// ErrNotImplemented indicates the operation is not implemented by this server
	ErrNotImplemented

	// ErrUnknownUser indicates the logon user or mailbox doesn't exist
	ErrUnknownUser

	// ErrLoginPermission indicates the user may not open the mailbox
	ErrLoginPermission

	// ErrWrongServer indicates the mailbox is homed on another server
	ErrWrongServer

	// ErrServerPaused indicates the caller is being throttled
	ErrServerPaused

	// ErrIOError indicates a backend failure
	ErrIOError
)

var codeNames = map[ErrorCode]string{
	ErrGeneric:          "generic",
	ErrNotFound:         "not-found",
	ErrNotSupported:     "not-supported",
	ErrInvalidParameter: "invalid-parameter",
	ErrAccessDenied:     "access-denied",
	ErrRPCFormat:        "rpc-format",
	ErrNotImplemented:   "not-implemented",
	ErrUnknownUser:      "unknown-user",
	ErrLoginPermission:  "login-permission",
	ErrWrongServer:      "wrong-server",
	ErrServerPaused:     "server-paused",
	ErrIOError:          "io-error",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// NewError creates a StoreError with the given code.
func NewError(code ErrorCode, message string) *StoreError {
	return &StoreError{Code: code, Message: message}
}

func NewNotFoundError(message string) *StoreError {
	return NewError(ErrNotFound, message)
}

func NewNotSupportedError(message string) *StoreError {
	return NewError(ErrNotSupported, message)
}

func NewInvalidParameterError(message string) *StoreError {
	return NewError(ErrInvalidParameter, message)
}

func NewAccessDeniedError(message string) *StoreError {
	return NewError(ErrAccessDenied, message)
}

func NewGenericError(message string) *StoreError {
	return NewError(ErrGeneric, message)
}

// NewWrongServerError reports that the mailbox lives on server.
func NewWrongServerError(server string) *StoreError {
	return &StoreError{Code: ErrWrongServer, Message: "mailbox is homed on another server", Server: server}
}

// CodeOf extracts the ErrorCode from err.
//
// Errors that are not StoreErrors are reported as ErrIOError, and a nil
// error reports ok=false.
func CodeOf(err error) (code ErrorCode, ok bool) {
	if err == nil {
		return 0, false
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code, true
	}
	return ErrIOError, true
}

// HasCode reports whether err is a StoreError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrNotFound)
}
