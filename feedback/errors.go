// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error Types
// -----------------------------------------------------------------------------

var (
	// ErrIndexOutOfRange is returned by Get and Slice for indexes beyond
	// the locally cached length. Indexed access never triggers a fetch;
	// call EnsurePopulated (or Records) first.
	ErrIndexOutOfRange = errors.New("index out of cached range")

	// ErrNoSample is returned when schema inference is required but the
	// remote dataset has no records to sample from. Push a first record
	// with AddRecord, or configure the schema by adding records remotely.
	ErrNoSample = errors.New("no records available for schema inference")

	// ErrShortPage is returned when the remote source yields an empty page
	// before the reported total was reached.
	ErrShortPage = errors.New("remote returned an empty page before total")
)

// ConfigError reports an invalid dataset identity or option at
// construction time. Construction fails fast; no handle is returned.
type ConfigError struct {
	// Reason describes what was missing or invalid.
	Reason string

	// Err is the wrapped underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("curio: invalid dataset configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("curio: invalid dataset configuration: %s", e.Reason)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SchemaError reports a record whose shape disagrees with the dataset's
// bound schema. The schema is inferred once from the first observed record
// and never re-derived; later records must conform.
type SchemaError struct {
	// Field is the offending field name.
	Field string

	// Reason describes the disagreement ("missing", "not in schema",
	// or a kind mismatch).
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("curio: record does not match dataset schema: field %q: %s", e.Field, e.Reason)
}

// IsSchemaError reports whether err is (or wraps) a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
