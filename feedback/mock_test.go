// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curiodata/curio-go/api"
)

// mockSource is an in-memory RecordSource with per-method call counters
// and failure injection. It backs every test in this package that needs
// a remote side.
type mockSource struct {
	mu sync.Mutex

	workspaces []api.Workspace
	datasets   map[string]*api.Dataset
	fields     map[string][]api.Field
	questions  map[string][]api.Question
	records    map[string][]api.RecordItem

	// calls counts invocations per method name.
	calls map[string]int

	// recordOffsets logs the offset of every GetRecords call, in order.
	recordOffsets []int

	// fail maps a method name to an error returned on every call, or
	// failAfter to an error returned once calls[method] exceeds the
	// threshold (so the first N calls succeed).
	fail      map[string]error
	failAfter map[string]failPoint
}

type failPoint struct {
	after int
	err   error
}

func newMockSource() *mockSource {
	return &mockSource{
		datasets:  make(map[string]*api.Dataset),
		fields:    make(map[string][]api.Field),
		questions: make(map[string][]api.Question),
		records:   make(map[string][]api.RecordItem),
		calls:     make(map[string]int),
		fail:      make(map[string]error),
		failAfter: make(map[string]failPoint),
	}
}

// seedDataset registers a published dataset with records and returns its
// id. Field values go in as given; tests control the types.
func (m *mockSource) seedDataset(name, workspace string, fields []map[string]any) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	wsID := ""
	for _, ws := range m.workspaces {
		if ws.Name == workspace {
			wsID = ws.ID
		}
	}
	if wsID == "" {
		wsID = uuid.NewString()
		m.workspaces = append(m.workspaces, api.Workspace{ID: wsID, Name: workspace})
	}

	id := uuid.NewString()
	m.datasets[id] = &api.Dataset{
		ID:          id,
		Name:        name,
		WorkspaceID: wsID,
		Status:      "ready",
	}
	now := time.Now().UTC()
	for i, f := range fields {
		m.records[id] = append(m.records[id], api.RecordItem{
			ID:         uuid.NewString(),
			Fields:     f,
			ExternalID: fmt.Sprintf("ext-%d", i),
			InsertedAt: now,
			UpdatedAt:  now,
		})
	}
	return id
}

func (m *mockSource) count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// enter records the call and returns any injected failure.
func (m *mockSource) enter(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	if err, ok := m.fail[method]; ok {
		return err
	}
	if fp, ok := m.failAfter[method]; ok && m.calls[method] > fp.after {
		return fp.err
	}
	return nil
}

func (m *mockSource) ListWorkspaces(ctx context.Context) ([]api.Workspace, error) {
	if err := m.enter("ListWorkspaces"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.Workspace, len(m.workspaces))
	copy(out, m.workspaces)
	return out, nil
}

func (m *mockSource) WorkspaceByName(ctx context.Context, name string) (*api.Workspace, error) {
	if err := m.enter("WorkspaceByName"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ws := range m.workspaces {
		if ws.Name == name {
			out := ws
			return &out, nil
		}
	}
	return nil, &api.APIError{Kind: api.KindNotFound, Op: "WorkspaceByName", Detail: name}
}

func (m *mockSource) ListDatasets(ctx context.Context) ([]api.DatasetSummary, error) {
	if err := m.enter("ListDatasets"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.DatasetSummary, 0, len(m.datasets))
	for _, ds := range m.datasets {
		out = append(out, api.DatasetSummary{
			ID:          ds.ID,
			Name:        ds.Name,
			WorkspaceID: ds.WorkspaceID,
		})
	}
	return out, nil
}

func (m *mockSource) GetDataset(ctx context.Context, id string) (*api.Dataset, error) {
	if err := m.enter("GetDataset"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[id]
	if !ok {
		return nil, &api.APIError{Kind: api.KindNotFound, Op: "GetDataset", Detail: id}
	}
	out := *ds
	return &out, nil
}

func (m *mockSource) GetFields(ctx context.Context, id string) ([]api.Field, error) {
	if err := m.enter("GetFields"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.Field, len(m.fields[id]))
	copy(out, m.fields[id])
	return out, nil
}

func (m *mockSource) GetQuestions(ctx context.Context, id string) ([]api.Question, error) {
	if err := m.enter("GetQuestions"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.Question, len(m.questions[id]))
	copy(out, m.questions[id])
	return out, nil
}

func (m *mockSource) GetRecords(ctx context.Context, id string, offset, limit int) (*api.RecordsPage, error) {
	if err := m.enter("GetRecords"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordOffsets = append(m.recordOffsets, offset)
	all := m.records[id]
	page := &api.RecordsPage{Total: len(all)}
	if offset < 0 || offset >= len(all) {
		return page, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page.Items = make([]api.RecordItem, end-offset)
	copy(page.Items, all[offset:end])
	return page, nil
}

func (m *mockSource) AddRecord(ctx context.Context, id string, record api.NewRecord) error {
	if err := m.enter("AddRecord"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	item := api.RecordItem{
		ID:         uuid.NewString(),
		Fields:     record.Fields,
		ExternalID: record.ExternalID,
		InsertedAt: now,
		UpdatedAt:  now,
	}
	if record.Response != nil {
		item.Responses = []api.Response{*record.Response}
	}
	m.records[id] = append(m.records[id], item)
	return nil
}

func (m *mockSource) CreateDataset(ctx context.Context, name, workspaceID, guidelines string) (*api.Dataset, error) {
	if err := m.enter("CreateDataset"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	ds := &api.Dataset{
		ID:          id,
		Name:        name,
		WorkspaceID: workspaceID,
		Guidelines:  guidelines,
		Status:      "draft",
	}
	m.datasets[id] = ds
	out := *ds
	return &out, nil
}

func (m *mockSource) AddField(ctx context.Context, id string, field api.Field) error {
	if err := m.enter("AddField"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[id] = append(m.fields[id], field)
	return nil
}

func (m *mockSource) AddQuestion(ctx context.Context, id string, question api.Question) error {
	if err := m.enter("AddQuestion"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[id] = append(m.questions[id], question)
	return nil
}

func (m *mockSource) PublishDataset(ctx context.Context, id string) error {
	if err := m.enter("PublishDataset"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ds, ok := m.datasets[id]; ok {
		ds.Status = "ready"
	}
	return nil
}

func (m *mockSource) DeleteDataset(ctx context.Context, id string) error {
	if err := m.enter("DeleteDataset"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.datasets, id)
	delete(m.fields, id)
	delete(m.questions, id)
	delete(m.records, id)
	return nil
}

var _ RecordSource = (*mockSource)(nil)

// memStore is an in-memory RecordStore for snapshot tests.
type memStore struct {
	mu    sync.Mutex
	snaps map[string]CacheSnapshot
	saves int
	loads int
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string]CacheSnapshot)}
}

func (s *memStore) Save(ctx context.Context, snap CacheSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.snaps[snap.DatasetID] = snap
	return nil
}

func (s *memStore) Load(ctx context.Context, datasetID string) (*CacheSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	snap, ok := s.snaps[datasetID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *memStore) Drop(ctx context.Context, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, datasetID)
	return nil
}
