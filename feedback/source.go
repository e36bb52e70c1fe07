// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"context"

	"github.com/curiodata/curio-go/api"
)

// RecordSource is the remote side of a dataset handle: everything the
// client consumes from the Curio server. Network, auth, and rate limiting
// concerns live entirely behind this interface; api.Client is the
// production implementation and tests substitute an in-memory fake.
//
// All calls block until the server responds or ctx is done.
type RecordSource interface {
	// ListWorkspaces returns every workspace visible to the caller.
	ListWorkspaces(ctx context.Context) ([]api.Workspace, error)

	// WorkspaceByName resolves a workspace by its unique name.
	WorkspaceByName(ctx context.Context, name string) (*api.Workspace, error)

	// ListDatasets returns summaries of every visible dataset.
	ListDatasets(ctx context.Context) ([]api.DatasetSummary, error)

	// GetDataset fetches the full dataset resource by id.
	GetDataset(ctx context.Context, id string) (*api.Dataset, error)

	// GetFields returns the dataset's field descriptors.
	GetFields(ctx context.Context, id string) ([]api.Field, error)

	// GetQuestions returns the dataset's question descriptors.
	GetQuestions(ctx context.Context, id string) ([]api.Question, error)

	// GetRecords fetches one page of records at the given offset, along
	// with the remote total count.
	GetRecords(ctx context.Context, id string, offset, limit int) (*api.RecordsPage, error)

	// AddRecord appends one record to the dataset.
	AddRecord(ctx context.Context, id string, record api.NewRecord) error

	// CreateDataset provisions an unpublished dataset shell.
	CreateDataset(ctx context.Context, name, workspaceID, guidelines string) (*api.Dataset, error)

	// AddField attaches a field descriptor to an unpublished dataset.
	AddField(ctx context.Context, id string, field api.Field) error

	// AddQuestion attaches a question descriptor to an unpublished dataset.
	AddQuestion(ctx context.Context, id string, question api.Question) error

	// PublishDataset transitions a dataset from draft to ready.
	PublishDataset(ctx context.Context, id string) error

	// DeleteDataset removes a dataset and all its records.
	DeleteDataset(ctx context.Context, id string) error
}

// api.Client must satisfy the full source contract.
var _ RecordSource = (*api.Client)(nil)

// -----------------------------------------------------------------------------
// Local Persistence
// -----------------------------------------------------------------------------

// CacheSnapshot is a persisted copy of a fully fetched record cache: the
// bound schema, the materialized records in remote order, and the remote
// total they were fetched against.
type CacheSnapshot struct {
	DatasetID string
	Total     int
	Schema    SchemaDescriptor
	Records   []*Record
}

// RecordStore persists cache snapshots between runs so that reopening a
// dataset can skip the full fetch when the remote collection hasn't grown.
// storage/badger provides the embedded implementation.
type RecordStore interface {
	// Save writes or replaces the snapshot for snap.DatasetID.
	Save(ctx context.Context, snap CacheSnapshot) error

	// Load returns the stored snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context, datasetID string) (*CacheSnapshot, error)

	// Drop deletes the snapshot for the dataset, if any.
	Drop(ctx context.Context, datasetID string) error
}
