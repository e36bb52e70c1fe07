// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error Types
// -----------------------------------------------------------------------------

// ErrorKind categorizes remote operation failures for programmatic handling.
type ErrorKind int

const (
	// KindConnection indicates the Curio server is not reachable.
	KindConnection ErrorKind = iota

	// KindNotFound indicates the requested resource does not exist.
	KindNotFound

	// KindUnauthorized indicates the API key was missing or rejected.
	KindUnauthorized

	// KindRateLimited indicates the server throttled the request.
	KindRateLimited

	// KindInvalidRequest indicates the server rejected the request
	// as malformed or conflicting (a 4xx other than the ones above).
	KindInvalidRequest

	// KindInvalidResponse indicates the server returned unexpected data.
	KindInvalidResponse

	// KindCanceled indicates the operation's context was canceled.
	KindCanceled

	// KindServer indicates any other server-side failure.
	KindServer
)

// String returns the error kind as a string for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "CONNECTION_FAILED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	case KindInvalidResponse:
		return "INVALID_RESPONSE"
	case KindCanceled:
		return "CANCELED"
	case KindServer:
		return "SERVER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// APIError provides structured information about a failed remote call.
//
// Every error surfaced by Client is an *APIError (possibly wrapping the
// underlying transport error), so callers can branch on Kind:
//
//	var apiErr *api.APIError
//	if errors.As(err, &apiErr) && apiErr.Kind == api.KindNotFound {
//	    ...
//	}
type APIError struct {
	// Kind categorizes the failure.
	Kind ErrorKind

	// Op names the failed operation (e.g. "get_records").
	Op string

	// Status is the HTTP status code, 0 when no response was received.
	Status int

	// Detail is the server's error body or the transport error text.
	Detail string

	// Err is the wrapped underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("curio: %s failed: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("curio: %s failed: %s: %s", e.Op, e.Kind, e.Detail)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an APIError with KindNotFound.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}
