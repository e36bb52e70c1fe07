// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"fmt"
	"math"
	"sort"
)

// -----------------------------------------------------------------------------
// Schema Inference
// -----------------------------------------------------------------------------
//
// The remote record collection is schema-less: the server stores field maps
// and never declares their shape. The client derives a structural schema
// from the FIRST record it observes (first-sample-wins, no unioning, no
// nullability analysis) and freezes it for the lifetime of the dataset
// handle. Every later record must conform or materialization fails.

// FieldKind is the inferred primitive kind of one record field.
type FieldKind int

const (
	// KindString holds text values.
	KindString FieldKind = iota

	// KindInt holds integer values. JSON numbers with zero fraction
	// infer and coerce to this kind.
	KindInt

	// KindFloat holds fractional numeric values.
	KindFloat
)

// String returns the kind name used in error messages.
func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// FieldMap is one record's raw content: field name to scalar value.
// Values arriving from JSON are string or float64; locally constructed
// maps may also hold int, int64, or float32.
type FieldMap = map[string]any

// TypedFields is a FieldMap normalized through a Validator: strings stay
// string, KindInt fields are int64, KindFloat fields are float64.
type TypedFields = map[string]any

// SchemaDescriptor maps field names to their inferred kinds. Immutable
// once bound to a dataset handle.
type SchemaDescriptor map[string]FieldKind

// FieldNames returns the descriptor's field names in sorted order.
func (d SchemaDescriptor) FieldNames() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InferSchema derives a SchemaDescriptor from a single sample FieldMap.
//
// Each key maps to the runtime kind of its value; the sample is assumed
// representative of every record in the dataset. An empty sample or an
// unsupported value type is an error.
func InferSchema(sample FieldMap) (SchemaDescriptor, error) {
	if len(sample) == 0 {
		return nil, fmt.Errorf("infer schema: %w", ErrNoSample)
	}
	desc := make(SchemaDescriptor, len(sample))
	for name, value := range sample {
		kind, err := kindOf(value)
		if err != nil {
			return nil, &SchemaError{Field: name, Reason: err.Error()}
		}
		desc[name] = kind
	}
	return desc, nil
}

// kindOf classifies a scalar value.
func kindOf(value any) (FieldKind, error) {
	switch v := value.(type) {
	case string:
		return KindString, nil
	case int, int32, int64:
		return KindInt, nil
	case float32:
		return kindOfFloat(float64(v)), nil
	case float64:
		return kindOfFloat(v), nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
}

// kindOfFloat treats integral floats as ints: JSON decoding hands every
// number over as float64, so 5 and 5.0 are indistinguishable on the wire.
func kindOfFloat(v float64) FieldKind {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return KindInt
	}
	return KindFloat
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// Validator converts raw FieldMaps into TypedFields conforming to one
// SchemaDescriptor. A Validator is bound to exactly one dataset handle,
// created lazily on the first schema-requiring operation, then reused;
// it is never re-derived even if later records have a different shape.
type Validator struct {
	desc SchemaDescriptor
}

// NewValidator creates a Validator for the given descriptor.
func NewValidator(desc SchemaDescriptor) *Validator {
	copied := make(SchemaDescriptor, len(desc))
	for k, v := range desc {
		copied[k] = v
	}
	return &Validator{desc: copied}
}

// InferValidator is shorthand for InferSchema + NewValidator.
func InferValidator(sample FieldMap) (*Validator, error) {
	desc, err := InferSchema(sample)
	if err != nil {
		return nil, err
	}
	return NewValidator(desc), nil
}

// Descriptor returns a copy of the bound schema descriptor.
func (v *Validator) Descriptor() SchemaDescriptor {
	copied := make(SchemaDescriptor, len(v.desc))
	for k, kind := range v.desc {
		copied[k] = kind
	}
	return copied
}

// Convert validates a raw FieldMap against the bound descriptor and
// returns its typed form.
//
// Fails with *SchemaError when the map lacks a required field, carries a
// field the schema doesn't know, or holds a value that cannot coerce to
// the recorded kind. Unknown keys are an error, never silently dropped:
// once a schema is bound, every record must carry exactly its fields,
// which surfaces a misspelled field name as a validation failure instead
// of a quietly missing value.
func (v *Validator) Convert(fields FieldMap) (TypedFields, error) {
	typed := make(TypedFields, len(v.desc))
	for name, kind := range v.desc {
		raw, ok := fields[name]
		if !ok {
			return nil, &SchemaError{Field: name, Reason: "missing"}
		}
		value, err := coerce(raw, kind)
		if err != nil {
			return nil, &SchemaError{Field: name, Reason: err.Error()}
		}
		typed[name] = value
	}
	for name := range fields {
		if _, ok := v.desc[name]; !ok {
			return nil, &SchemaError{Field: name, Reason: "not in schema"}
		}
	}
	return typed, nil
}

// coerce converts a raw scalar to the canonical representation of kind.
func coerce(raw any, kind FieldKind) (any, error) {
	switch kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil

	case KindInt:
		switch n := raw.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float32:
			return intFromFloat(float64(n))
		case float64:
			return intFromFloat(n)
		default:
			return nil, fmt.Errorf("expected int, got %T", raw)
		}

	case KindFloat:
		switch n := raw.(type) {
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		default:
			return nil, fmt.Errorf("expected float, got %T", raw)
		}

	default:
		return nil, fmt.Errorf("unknown kind %d", kind)
	}
}

// intFromFloat accepts only integral floats for KindInt fields.
func intFromFloat(v float64) (any, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("expected int, got fractional number %v", v)
	}
	return int64(v), nil
}
