// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"fmt"
	"time"

	"github.com/curiodata/curio-go/api"
)

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

// ResponseStatus is the submission state of a response.
type ResponseStatus string

const (
	// StatusSubmitted marks a completed response. This is the default for
	// every locally constructed record.
	StatusSubmitted ResponseStatus = "submitted"

	// StatusMissing marks a response the annotator has not given yet.
	StatusMissing ResponseStatus = "missing"

	// StatusDiscarded marks a response the annotator rejected.
	StatusDiscarded ResponseStatus = "discarded"
)

// valid reports whether s is one of the three known statuses.
func (s ResponseStatus) valid() bool {
	switch s {
	case StatusSubmitted, StatusMissing, StatusDiscarded:
		return true
	default:
		return false
	}
}

// ResponseValue wraps a single answer value (string or number).
type ResponseValue struct {
	Value any
}

// Response is one annotator's set of answers for a record.
type Response struct {
	// Values maps question name to answer.
	Values map[string]ResponseValue

	// Status is the submission state.
	Status ResponseStatus
}

// DefaultResponse returns the response every locally constructed record
// gets when none is provided: empty values, status "submitted".
func DefaultResponse() Response {
	return Response{
		Values: map[string]ResponseValue{},
		Status: StatusSubmitted,
	}
}

// normalize fills empty pieces with their defaults.
func (r Response) normalize() Response {
	if r.Values == nil {
		r.Values = map[string]ResponseValue{}
	}
	if r.Status == "" {
		r.Status = StatusSubmitted
	}
	return r
}

// toAPI converts to the wire shape.
func (r Response) toAPI() api.Response {
	values := make(map[string]api.ResponseValue, len(r.Values))
	for name, v := range r.Values {
		values[name] = api.ResponseValue{Value: v.Value}
	}
	return api.Response{Values: values, Status: string(r.Status)}
}

// responseFromAPI converts from the wire shape, default-filling as it goes.
func responseFromAPI(in api.Response) Response {
	values := make(map[string]ResponseValue, len(in.Values))
	for name, v := range in.Values {
		values[name] = ResponseValue{Value: v.Value}
	}
	return Response{Values: values, Status: ResponseStatus(in.Status)}.normalize()
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// Record is a fully typed, locally cached record: validated fields plus
// responses and remote metadata.
//
// Records are owned by the dataset handle's cache once appended; callers
// receive read access through Get/Slice/Records, not ownership.
type Record struct {
	// ID is the remote record id. Empty for records appended locally
	// before the server echoed an id back.
	ID string

	// Fields holds the validated, typed field values.
	Fields TypedFields

	// Responses are the annotator responses attached to this record.
	Responses []Response

	// ExternalID is the caller-supplied correlation id, if any.
	ExternalID string

	// InsertedAt and UpdatedAt are remote timestamps; zero for records
	// that only exist locally.
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// RecordSubmission is the input to AddRecord: a raw field map plus an
// optional response and external id.
type RecordSubmission struct {
	// Fields is the record content. Required.
	Fields FieldMap

	// Response is attached to the record; when nil the default response
	// ({values: {}, status: submitted}) is used.
	Response *Response

	// ExternalID optionally correlates the record with an external system.
	ExternalID string
}

// response returns the submission's response with defaults applied.
func (s RecordSubmission) response() (Response, error) {
	if s.Response == nil {
		return DefaultResponse(), nil
	}
	resp := s.Response.normalize()
	if !resp.Status.valid() {
		return Response{}, fmt.Errorf("invalid response status %q", resp.Status)
	}
	return resp, nil
}

// materializeRecord converts one remote item into a cached Record using
// the dataset's bound validator.
func materializeRecord(item api.RecordItem, v *Validator) (*Record, error) {
	typed, err := v.Convert(item.Fields)
	if err != nil {
		return nil, err
	}
	responses := make([]Response, 0, len(item.Responses))
	for _, r := range item.Responses {
		responses = append(responses, responseFromAPI(r))
	}
	return &Record{
		ID:         item.ID,
		Fields:     typed,
		Responses:  responses,
		ExternalID: item.ExternalID,
		InsertedAt: item.InsertedAt,
		UpdatedAt:  item.UpdatedAt,
	}, nil
}
