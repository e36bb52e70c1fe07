// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/curiodata/curio-go/pkg/logging"
)

// CreateRequest describes a dataset to provision: its identity plus the
// complete field and question layout. At least one field and one question
// are required, since a dataset cannot be published without both.
type CreateRequest struct {
	Name       string `validate:"required"`
	Workspace  string `validate:"required"`
	Guidelines string

	Fields    []FieldSchema    `validate:"min=1"`
	Questions []QuestionSchema `validate:"min=1"`
}

// Validate checks the request and every descriptor in it, before any
// remote call is made.
func (r CreateRequest) Validate() error {
	if err := schemaValidate.Struct(r); err != nil {
		return &ConfigError{Reason: "invalid create request", Err: err}
	}
	for _, f := range r.Fields {
		if err := f.Validate(); err != nil {
			return &ConfigError{Reason: "invalid create request", Err: err}
		}
	}
	for _, q := range r.Questions {
		if err := q.Validate(); err != nil {
			return &ConfigError{Reason: "invalid create request", Err: err}
		}
	}
	return nil
}

// Create provisions a new published dataset and returns an open handle
// to it.
//
// The remote sequence is create shell, add fields, add questions,
// publish. Creation is not atomic on the server, so any failure after the
// shell exists triggers a compensating delete; when that delete itself
// fails, both errors are returned joined and the orphaned dataset id is
// logged for manual cleanup.
//
// Creating a name that already exists in the workspace is idempotent: a
// notice is logged and a handle to the existing dataset is returned,
// without comparing its layout to the request.
//
// opts configures the returned handle; its identity fields (ID, Name,
// Workspace) are ignored in favor of the request.
func Create(ctx context.Context, source RecordSource, req CreateRequest, opts OpenOptions) (*Dataset, error) {
	if source == nil {
		return nil, &ConfigError{Reason: "record source must not be nil"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	ws, err := source.WorkspaceByName(ctx, req.Workspace)
	if err != nil {
		return nil, err
	}

	existing, err := findByName(ctx, source, req.Name, ws.ID)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		logger.Warn("dataset already exists in workspace, reusing it",
			"name", req.Name, "workspace", req.Workspace)
		return openResolved(ctx, source, existing, opts)
	}

	created, err := source.CreateDataset(ctx, req.Name, ws.ID, req.Guidelines)
	if err != nil {
		return nil, err
	}

	// From here on the shell exists remotely; every failure must tear
	// it down again.
	if state, err := configureDataset(ctx, source, created.ID, req); err != nil {
		if delErr := source.DeleteDataset(ctx, created.ID); delErr != nil {
			logger.Error("rollback of partially created dataset failed, manual cleanup needed",
				"dataset_id", created.ID, "state", state.String(), "error", delErr)
			return nil, errors.Join(err, fmt.Errorf("rollback delete failed: %w", delErr))
		}
		logger.Info("rolled back partially created dataset",
			"dataset_id", created.ID, "state", state.String())
		return nil, err
	}

	return openResolved(ctx, source, created.ID, opts)
}

// provisionState tracks how far a dataset got through provisioning.
// Only the shell creation has an undo (delete); every state short of
// provisionPublished rolls back to nothing through that single delete.
type provisionState int

const (
	provisionCreated provisionState = iota
	provisionFieldsAdded
	provisionQuestionsAdded
	provisionPublished
)

func (s provisionState) String() string {
	switch s {
	case provisionCreated:
		return "created"
	case provisionFieldsAdded:
		return "fields_added"
	case provisionQuestionsAdded:
		return "questions_added"
	case provisionPublished:
		return "published"
	default:
		return "unknown"
	}
}

// configureDataset advances a freshly created shell through the
// remaining provisioning states. On failure it returns the last state
// reached, so the rollback can report how far the dataset got.
func configureDataset(ctx context.Context, source RecordSource, id string, req CreateRequest) (provisionState, error) {
	state := provisionCreated
	for _, f := range req.Fields {
		if err := source.AddField(ctx, id, f.normalize().toAPI()); err != nil {
			return state, fmt.Errorf("adding field %q: %w", f.Name, err)
		}
	}
	state = provisionFieldsAdded
	for _, q := range req.Questions {
		if err := source.AddQuestion(ctx, id, q.normalize().toAPI()); err != nil {
			return state, fmt.Errorf("adding question %q: %w", q.Name, err)
		}
	}
	state = provisionQuestionsAdded
	if err := source.PublishDataset(ctx, id); err != nil {
		return state, fmt.Errorf("publishing dataset: %w", err)
	}
	return provisionPublished, nil
}

// findByName returns the id of the dataset with the given name in the
// workspace, or "" when absent.
func findByName(ctx context.Context, source RecordSource, name, workspaceID string) (string, error) {
	datasets, err := source.ListDatasets(ctx)
	if err != nil {
		return "", err
	}
	for _, ds := range datasets {
		if ds.Name == name && ds.WorkspaceID == workspaceID {
			return ds.ID, nil
		}
	}
	return "", nil
}

// openResolved opens a handle by id, carrying over the caller's handle
// configuration.
func openResolved(ctx context.Context, source RecordSource, id string, opts OpenOptions) (*Dataset, error) {
	opts.ID = id
	opts.Name = ""
	opts.Workspace = ""
	return Open(ctx, source, opts)
}
