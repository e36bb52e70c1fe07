// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package feedback is a client-side facade over a remote Curio feedback
dataset: a collection of labeled records (fields + responses) stored on a
server and accessed through a paginated REST API.

# Problem Statement

Remote record collections are schema-less and paginated. Callers want to
treat one as a local, typed, indexable sequence:

 1. Infer the record shape from the first page fetched
 2. Build a typed validator for that shape and freeze it for the
    dataset handle's lifetime
 3. Incrementally fetch, convert, and cache records page by page
 4. Expose them via random access, length, and a streaming iterator
 5. Keep the local cache consistent when records are appended

# Usage

	client, _ := api.NewClient(api.Config{BaseURL: url, APIKey: key})

	ds, err := feedback.Open(ctx, client, feedback.OpenOptions{
	    Name:      "product-reviews",
	    Workspace: "research",
	})
	if err != nil {
	    return err
	}
	defer ds.Close()

	n, _ := ds.Len(ctx)          // triggers the full fetch on first use
	rec, _ := ds.Get(0)          // pure local access afterwards

	it := ds.IterBatches(ctx, 32) // or stream batch by batch
	for it.Next() {
	    process(it.Batch())
	}

# Laziness

The cache starts empty and fills on first demand: Len, Records, and the
batch iterator all trigger fetching, while Get/Slice/CachedLen never do.
Calling Len on an unfetched handle therefore is NOT free — a notice is
logged and the full fetch runs before the count returns.

# Schema Freeze

The validator is inferred exactly once per handle, from the first record
observed (remote page 0, or the first AddRecord on an empty dataset).
Later records with a different shape fail with SchemaError; the schema is
never silently re-inferred. Correctness of all later conversions depends
on the first sample being representative.
*/
package feedback

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/curiodata/curio-go/api"
	"github.com/curiodata/curio-go/pkg/logging"
	"github.com/curiodata/curio-go/pkg/progress"
)

// defaultBatchSize is used by IterBatches when the caller passes zero.
const defaultBatchSize = 32

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// OpenOptions identifies a remote dataset and configures its handle.
// Exactly one of ID, or Name+Workspace, must be provided.
type OpenOptions struct {
	// ID is the dataset's server-assigned UUID.
	ID string

	// Name and Workspace identify the dataset by its unique name within
	// a workspace. Both are required together.
	Name      string
	Workspace string

	// FetchPageSize is the page size used by the full fetch.
	// Default: 1 (simple per-record paging; use IterBatches for
	// batch-sized streaming).
	FetchPageSize int

	// Logger receives operational notices (implicit fetches, implicit
	// schema inference). Default: logging.Default().
	Logger *logging.Logger

	// Progress receives per-page counts during full fetches.
	// Default: progress.Nop{}.
	Progress progress.Reporter

	// Store enables warm-starting the cache from a persisted snapshot
	// and writing one back after full fetches. Default: nil (disabled).
	Store RecordStore

	// AppendToColdCache controls whether AddRecord appends to a cache
	// that has never been populated. When false (the default) a
	// never-fetched cache stays empty so that "empty" still signals
	// "not yet fetched"; when true, locally added records are cached
	// immediately. Such a cache diverges from remote order, so the next
	// full fetch or batch stream drops it and refetches everything —
	// including the added records — in remote order.
	AppendToColdCache bool
}

// -----------------------------------------------------------------------------
// Dataset Handle
// -----------------------------------------------------------------------------

// Dataset is a handle to one remote dataset: immutable identity plus one
// record cache and one schema binding.
//
// A handle assumes a single logical caller and a single remote source of
// truth that is append-mostly during the handle's lifetime. Two handles
// never share a cache.
type Dataset struct {
	id          string
	name        string
	workspaceID string
	guidelines  string

	source   RecordSource
	cache    *RecordCache
	store    RecordStore
	logger   *logging.Logger
	reporter progress.Reporter

	fetchPageSize     int
	appendToColdCache bool

	// mu guards the bind-once schema and the memoized descriptor lists.
	mu        sync.Mutex
	schema    *Validator
	fields    []FieldSchema
	questions []QuestionSchema
}

// Open resolves a dataset's identity and returns its handle.
//
// Identity errors (neither ID nor Name given, malformed ID, unknown
// workspace or dataset name) fail fast with *ConfigError. The cache
// starts empty; no records are fetched here.
func Open(ctx context.Context, source RecordSource, opts OpenOptions) (*Dataset, error) {
	if source == nil {
		return nil, &ConfigError{Reason: "record source must not be nil"}
	}

	id := opts.ID
	switch {
	case id != "":
		if _, err := uuid.Parse(id); err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("dataset id %q is not a valid UUID", id), Err: err}
		}
	case opts.Name != "":
		if opts.Workspace == "" {
			return nil, &ConfigError{Reason: "workspace is required when opening by name"}
		}
		resolved, err := resolveByName(ctx, source, opts.Name, opts.Workspace)
		if err != nil {
			return nil, err
		}
		id = resolved
	default:
		return nil, &ConfigError{Reason: "either id or name+workspace must be provided"}
	}

	remote, err := source.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	reporter := opts.Progress
	if reporter == nil {
		reporter = progress.Nop{}
	}
	pageSize := opts.FetchPageSize
	if pageSize <= 0 {
		pageSize = 1
	}

	return &Dataset{
		id:                remote.ID,
		name:              remote.Name,
		workspaceID:       remote.WorkspaceID,
		guidelines:        remote.Guidelines,
		source:            source,
		cache:             NewRecordCache(),
		store:             opts.Store,
		logger:            logger.With("dataset_id", remote.ID),
		reporter:          reporter,
		fetchPageSize:     pageSize,
		appendToColdCache: opts.AppendToColdCache,
	}, nil
}

// resolveByName finds a dataset id by name within a workspace.
func resolveByName(ctx context.Context, source RecordSource, name, workspace string) (string, error) {
	ws, err := source.WorkspaceByName(ctx, workspace)
	if err != nil {
		if api.IsNotFound(err) {
			return "", &ConfigError{Reason: fmt.Sprintf("workspace %q not found", workspace), Err: err}
		}
		return "", err
	}

	datasets, err := source.ListDatasets(ctx)
	if err != nil {
		return "", err
	}
	for _, ds := range datasets {
		if ds.Name == name && ds.WorkspaceID == ws.ID {
			return ds.ID, nil
		}
	}
	return "", &ConfigError{
		Reason: fmt.Sprintf("dataset %q not found in workspace %q", name, workspace),
	}
}

// -----------------------------------------------------------------------------
// Identity Accessors
// -----------------------------------------------------------------------------

// ID returns the dataset's server-assigned id.
func (d *Dataset) ID() string { return d.id }

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// WorkspaceID returns the owning workspace id.
func (d *Dataset) WorkspaceID() string { return d.workspaceID }

// Guidelines returns the annotation guidelines.
func (d *Dataset) Guidelines() string { return d.guidelines }

// String implements fmt.Stringer.
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(name=%s, workspace=%s, id=%s)", d.name, d.workspaceID, d.id)
}

// Schema returns the bound validator, or nil when no schema-requiring
// operation has run yet.
func (d *Dataset) Schema() *Validator {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schema
}

// bindSchema returns the bound validator, inferring and binding it from
// sample when no validator exists yet. The first caller wins; later
// samples are ignored (freeze on first touch).
func (d *Dataset) bindSchema(sample FieldMap) (*Validator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.schema != nil {
		return d.schema, nil
	}
	v, err := InferValidator(sample)
	if err != nil {
		return nil, err
	}
	d.schema = v
	return v, nil
}

// bindValidator installs a pre-built validator (warm start path) unless
// one is already bound.
func (d *Dataset) bindValidator(v *Validator) *Validator {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.schema == nil {
		d.schema = v
	}
	return d.schema
}

// -----------------------------------------------------------------------------
// Read Access
// -----------------------------------------------------------------------------

// CachedLen returns the current local count. Pure; never fetches.
func (d *Dataset) CachedLen() int {
	return d.cache.CachedLen()
}

// Len returns the dataset length, fetching all records first if the cache
// was never populated.
//
// Calling Len on a fresh handle is NOT free: a notice is logged and the
// full fetch runs. A second Len after population costs zero remote calls.
func (d *Dataset) Len(ctx context.Context) (int, error) {
	if !d.cache.Populated() {
		d.logger.Warn("records not cached, triggering a full fetch")
		if err := d.EnsurePopulated(ctx); err != nil {
			return 0, err
		}
	}
	return d.cache.CachedLen(), nil
}

// Get returns the record at index i from local data only. Out-of-range
// access fails with ErrIndexOutOfRange; it never fetches.
func (d *Dataset) Get(i int) (*Record, error) {
	return d.cache.Get(i)
}

// Slice returns records[i:j] from local data only.
func (d *Dataset) Slice(i, j int) ([]*Record, error) {
	return d.cache.Slice(i, j)
}

// Records returns all records, fetching them first if needed.
func (d *Dataset) Records(ctx context.Context) ([]*Record, error) {
	if err := d.EnsurePopulated(ctx); err != nil {
		return nil, err
	}
	return d.cache.All(), nil
}

// FetchOne returns the first record without populating the whole cache:
// from local data when available, otherwise via a single-record fetch.
// The fetched record is not cached (the cache stays in its "not yet
// fetched" state).
func (d *Dataset) FetchOne(ctx context.Context) (*Record, error) {
	if d.cache.CachedLen() > 0 {
		return d.cache.Get(0)
	}
	page, err := d.source.GetRecords(ctx, d.id, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, &ConfigError{Reason: "dataset has no records", Err: ErrNoSample}
	}
	v, err := d.bindSchema(page.Items[0].Fields)
	if err != nil {
		return nil, err
	}
	return materializeRecord(page.Items[0], v)
}

// Close drops all cached records. Safe to call multiple times; the
// handle's identity remains usable and a later access refetches.
func (d *Dataset) Close() {
	d.cache.Release()
}

// -----------------------------------------------------------------------------
// Fields and Questions
// -----------------------------------------------------------------------------

// Fields returns the dataset's field descriptors, fetched once and
// memoized.
func (d *Dataset) Fields(ctx context.Context) ([]FieldSchema, error) {
	d.mu.Lock()
	if d.fields != nil {
		out := make([]FieldSchema, len(d.fields))
		copy(out, d.fields)
		d.mu.Unlock()
		return out, nil
	}
	d.mu.Unlock()

	remote, err := d.source.GetFields(ctx, d.id)
	if err != nil {
		return nil, err
	}
	fields := make([]FieldSchema, 0, len(remote))
	for _, f := range remote {
		fields = append(fields, fieldFromAPI(f))
	}

	d.mu.Lock()
	d.fields = fields
	out := make([]FieldSchema, len(fields))
	copy(out, fields)
	d.mu.Unlock()
	return out, nil
}

// Questions returns the dataset's question descriptors, fetched once and
// memoized.
func (d *Dataset) Questions(ctx context.Context) ([]QuestionSchema, error) {
	d.mu.Lock()
	if d.questions != nil {
		out := make([]QuestionSchema, len(d.questions))
		copy(out, d.questions)
		d.mu.Unlock()
		return out, nil
	}
	d.mu.Unlock()

	remote, err := d.source.GetQuestions(ctx, d.id)
	if err != nil {
		return nil, err
	}
	questions := make([]QuestionSchema, 0, len(remote))
	for _, q := range remote {
		questions = append(questions, questionFromAPI(q))
	}

	d.mu.Lock()
	d.questions = questions
	out := make([]QuestionSchema, len(questions))
	copy(out, questions)
	d.mu.Unlock()
	return out, nil
}

// -----------------------------------------------------------------------------
// Mutation
// -----------------------------------------------------------------------------

// AddRecord validates, submits, and (conditionally) caches one record.
//
// Sequence:
//  1. If no schema is bound yet, infer and bind it from this record's
//     fields (local-first inference; a notice is logged).
//  2. Convert the fields through the bound validator.
//  3. Submit to the remote source. Submission failures propagate
//     unchanged; nothing is cached.
//  4. On success, append a materialized record to the local cache — but
//     only when the cache has already been populated, unless
//     AppendToColdCache was set. A never-fetched cache staying empty
//     preserves the "empty means not yet fetched" signal.
func (d *Dataset) AddRecord(ctx context.Context, sub RecordSubmission) error {
	if len(sub.Fields) == 0 {
		return &ConfigError{Reason: "record fields must not be empty"}
	}

	if d.Schema() == nil {
		d.logger.Warn("no schema bound for this dataset, inferring one from the record")
	}
	v, err := d.bindSchema(sub.Fields)
	if err != nil {
		return err
	}

	typed, err := v.Convert(sub.Fields)
	if err != nil {
		return err
	}

	resp, err := sub.response()
	if err != nil {
		return &ConfigError{Reason: err.Error()}
	}

	wireResp := resp.toAPI()
	if err := d.source.AddRecord(ctx, d.id, api.NewRecord{
		Fields:     typed,
		Response:   &wireResp,
		ExternalID: sub.ExternalID,
	}); err != nil {
		return err
	}

	if d.cache.Populated() || d.appendToColdCache {
		d.cache.Append(&Record{
			Fields:     typed,
			Responses:  []Response{resp},
			ExternalID: sub.ExternalID,
		})
	}
	return nil
}
