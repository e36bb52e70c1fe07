// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import "time"

// -----------------------------------------------------------------------------
// Wire Types
// -----------------------------------------------------------------------------
//
// These structs mirror the Curio server's JSON payloads exactly. The typed
// domain layer lives in package feedback; nothing here validates shapes
// beyond what encoding/json enforces.

// Workspace is a named container for datasets.
type Workspace struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DatasetSummary is the listing shape returned by ListDatasets.
type DatasetSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WorkspaceID string `json:"workspace_id"`
}

// Dataset is the full dataset resource.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	WorkspaceID string    `json:"workspace_id"`
	Guidelines  string    `json:"guidelines"`
	Status      string    `json:"status"`
	InsertedAt  time.Time `json:"inserted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Field is a dataset field descriptor.
//
// Title defaults server-side to a capitalized form of Name when absent;
// clients may send it empty.
type Field struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Title    string         `json:"title,omitempty"`
	Required bool           `json:"required"`
	Settings map[string]any `json:"settings"`
}

// Question is a dataset question descriptor.
type Question struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required"`
	Settings    map[string]any `json:"settings"`
}

// ResponseValue wraps a single answer value.
type ResponseValue struct {
	Value any `json:"value"`
}

// Response holds a set of answer values plus a submission status
// ("submitted", "missing", or "discarded").
type Response struct {
	Values map[string]ResponseValue `json:"values"`
	Status string                   `json:"status"`
}

// RecordItem is one remote record as returned by GetRecords.
type RecordItem struct {
	ID         string         `json:"id"`
	Fields     map[string]any `json:"fields"`
	Responses  []Response     `json:"responses,omitempty"`
	ExternalID string         `json:"external_id,omitempty"`
	InsertedAt time.Time      `json:"inserted_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RecordsPage is one page of records plus the remote total count.
type RecordsPage struct {
	Items []RecordItem `json:"items"`
	Total int          `json:"total"`
}

// NewRecord is the append payload for AddRecord.
type NewRecord struct {
	Fields     map[string]any `json:"fields"`
	Response   *Response      `json:"response,omitempty"`
	ExternalID string         `json:"external_id,omitempty"`
}

// createDatasetRequest is the payload for CreateDataset.
type createDatasetRequest struct {
	Name        string `json:"name"`
	WorkspaceID string `json:"workspace_id"`
	Guidelines  string `json:"guidelines,omitempty"`
}

// listDatasetsResponse wraps the dataset listing payload.
type listDatasetsResponse struct {
	Items []DatasetSummary `json:"items"`
}

// listWorkspacesResponse wraps the workspace listing payload.
type listWorkspacesResponse struct {
	Items []Workspace `json:"items"`
}

// listFieldsResponse wraps the field listing payload.
type listFieldsResponse struct {
	Items []Field `json:"items"`
}

// listQuestionsResponse wraps the question listing payload.
type listQuestionsResponse struct {
	Items []Question `json:"items"`
}
