// Package errors provides the typed error taxonomy shared across the
// gateway and its HTTP/MCP boundary mappings.
package errors

import (
	"errors"
	"net/http"
)

// Type identifies a taxonomy kind. String-typed so it reads well in logs
// and serializes trivially.
type Type string

// Taxonomy kinds.
const (
	TypeUnauthorized Type = "unauthorized"
	TypeForbidden    Type = "forbidden"
	TypeNotFound     Type = "not_found"
	TypeBadRequest   Type = "bad_request"
	TypeConflict     Type = "conflict"
	TypeMcpProtocol  Type = "mcp_protocol"
	TypeProcess      Type = "process"
	TypeDatabase     Type = "database"
	TypeInternal     Type = "internal"
)

// Error is the gateway's typed error: a taxonomy Type, a user-safe Message,
// and an optional underlying Cause.
type Error struct {
	Type    Type
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return string(e.Type) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Type) + ": " + e.Message
}

// Unwrap exposes Cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error of the given Type.
func NewError(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// NewUnauthorizedError builds a TypeUnauthorized error.
func NewUnauthorizedError(message string, cause error) *Error {
	return NewError(TypeUnauthorized, message, cause)
}

// NewForbiddenError builds a TypeForbidden error.
func NewForbiddenError(message string, cause error) *Error {
	return NewError(TypeForbidden, message, cause)
}

// NewNotFoundError builds a TypeNotFound error.
func NewNotFoundError(message string, cause error) *Error {
	return NewError(TypeNotFound, message, cause)
}

// NewBadRequestError builds a TypeBadRequest error.
func NewBadRequestError(message string, cause error) *Error {
	return NewError(TypeBadRequest, message, cause)
}

// NewConflictError builds a TypeConflict error.
func NewConflictError(message string, cause error) *Error {
	return NewError(TypeConflict, message, cause)
}

// NewMcpProtocolError builds a TypeMcpProtocol error.
func NewMcpProtocolError(message string, cause error) *Error {
	return NewError(TypeMcpProtocol, message, cause)
}

// NewProcessError builds a TypeProcess error.
func NewProcessError(message string, cause error) *Error {
	return NewError(TypeProcess, message, cause)
}

// NewDatabaseError builds a TypeDatabase error.
func NewDatabaseError(message string, cause error) *Error {
	return NewError(TypeDatabase, message, cause)
}

// NewInternalError builds a TypeInternal error.
func NewInternalError(message string, cause error) *Error {
	return NewError(TypeInternal, message, cause)
}

func is(err error, t Type) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == t
}

// IsUnauthorized reports whether err (or any error it wraps) is TypeUnauthorized.
func IsUnauthorized(err error) bool { return is(err, TypeUnauthorized) }

// IsForbidden reports whether err (or any error it wraps) is TypeForbidden.
func IsForbidden(err error) bool { return is(err, TypeForbidden) }

// IsNotFound reports whether err (or any error it wraps) is TypeNotFound.
func IsNotFound(err error) bool { return is(err, TypeNotFound) }

// IsBadRequest reports whether err (or any error it wraps) is TypeBadRequest.
func IsBadRequest(err error) bool { return is(err, TypeBadRequest) }

// IsConflict reports whether err (or any error it wraps) is TypeConflict.
func IsConflict(err error) bool { return is(err, TypeConflict) }

// IsDatabase reports whether err (or any error it wraps) is TypeDatabase.
func IsDatabase(err error) bool { return is(err, TypeDatabase) }

// Code maps err's taxonomy Type to an HTTP status. Unrecognized errors
// (not built via this package) map to 500.
func Code(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Type {
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeBadRequest:
		return http.StatusBadRequest
	case TypeConflict:
		return http.StatusConflict
	case TypeMcpProtocol:
		// MCP-boundary errors don't cross HTTP directly in normal operation,
		// but if one escapes to the REST surface, treat it as a bad request.
		return http.StatusBadRequest
	case TypeProcess:
		return http.StatusBadGateway
	case TypeDatabase, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// JSONRPCCode maps err's taxonomy Type to the closest standard JSON-RPC
// error code: a TypeMcpProtocol error surfaces on the stream as a
// JSON-RPC error with the closest standard code.
func JSONRPCCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return -32603 // internal error
	}
	switch e.Type {
	case TypeBadRequest:
		return -32602 // invalid params
	case TypeNotFound:
		return -32601 // method not found
	case TypeMcpProtocol:
		return -32600 // invalid request
	default:
		return -32603 // internal error
	}
}
